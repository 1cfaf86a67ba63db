package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/krcapps/orderdash/internal/app/blob"
	"github.com/krcapps/orderdash/internal/app/store"
)

// DBDeps holds back-end dependencies for the app: the document store
// the repositories read and write through, and the blob store holding
// uploaded images. The Mongo client is kept only when the mongo
// backend is selected, for schema setup and shutdown.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Store         store.Adapter
	Blobs         blob.Store
}
