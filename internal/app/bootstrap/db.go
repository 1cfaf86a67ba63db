package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/blob"
	"github.com/krcapps/orderdash/internal/app/store/localstore"
	"github.com/krcapps/orderdash/internal/app/store/mongostore"
	"github.com/krcapps/orderdash/internal/app/store/users"
)

// ConnectDB builds the persistence and blob backends selected by
// configuration.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	switch appCfg.Persistence {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
		if err != nil {
			return deps, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return deps, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(appCfg.MongoDatabase)
		deps.MongoClient = client
		deps.MongoDatabase = db
		deps.Store = mongostore.New(db)
		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase))

	case "local":
		adapter, err := localstore.New(appCfg.LocalDataPath)
		if err != nil {
			return deps, fmt.Errorf("open local store: %w", err)
		}
		deps.Store = adapter
		logger.Info("using local file persistence",
			zap.String("path", appCfg.LocalDataPath))

	default:
		return deps, fmt.Errorf("unknown persistence backend %q", appCfg.Persistence)
	}

	switch appCfg.StorageType {
	case "s3":
		blobs, err := blob.NewMinIO(ctx, blob.MinIOConfig{
			Endpoint:  appCfg.S3Endpoint,
			AccessKey: appCfg.S3AccessKey,
			SecretKey: appCfg.S3SecretKey,
			Bucket:    appCfg.S3Bucket,
			UseSSL:    appCfg.S3UseSSL,
		})
		if err != nil {
			return deps, fmt.Errorf("connect s3 storage: %w", err)
		}
		deps.Blobs = blobs
		logger.Info("using S3 image storage",
			zap.String("endpoint", appCfg.S3Endpoint),
			zap.String("bucket", appCfg.S3Bucket))

	case "local":
		blobs, err := blob.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return deps, fmt.Errorf("open local image storage: %w", err)
		}
		deps.Blobs = blobs
		logger.Info("using local image storage",
			zap.String("path", appCfg.StorageLocalPath))

	default:
		return deps, fmt.Errorf("unknown storage backend %q", appCfg.StorageType)
	}

	return deps, nil
}

// EnsureSchema sets up indexes where the backend supports them. The
// local backend has no schema; email uniqueness there is enforced by
// the directory's lookup-before-insert.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}

	_, err := deps.MongoDatabase.Collection(users.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create unique email index: %w", err)
	}
	logger.Info("ensured unique email index")
	return nil
}
