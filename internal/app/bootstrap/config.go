package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the order dashboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: persistence, session_name, etc.
//   - Environment variables: ORDERDASH_PERSISTENCE, ORDERDASH_SESSION_NAME, etc.
//   - Command-line flags: --persistence, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "persistence", Default: "local", Desc: "Persistence backend: 'local' or 'mongo'"},
	{Name: "local_data_path", Default: "./data", Desc: "Data directory for the local backend"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "orderdash", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "orderdash-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "168h", Desc: "Session lifetime (e.g. 24h, 168h)"},

	// Image storage configuration
	{Name: "storage_type", Default: "local", Desc: "Image storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/images", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3-compatible storage
	{Name: "s3_endpoint", Default: "", Desc: "S3-compatible endpoint (e.g. minio.internal:9000)"},
	{Name: "s3_access_key", Default: "", Desc: "S3 access key"},
	{Name: "s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "s3_bucket", Default: "orderdash-images", Desc: "S3 bucket for uploaded images"},
	{Name: "s3_use_ssl", Default: true, Desc: "Use TLS when talking to the S3 endpoint"},

	// Admin bootstrap
	{Name: "admin_emails", Default: "", Desc: "Comma-separated admin email allow-list"},
	{Name: "admin_initial_password", Default: "", Desc: "Password for admin accounts created on startup"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ORDERDASH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ORDERDASH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		Persistence:   appValues.String("persistence"),
		LocalDataPath: appValues.String("local_data_path"),
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 168*time.Hour),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		S3Endpoint:  appValues.String("s3_endpoint"),
		S3AccessKey: appValues.String("s3_access_key"),
		S3SecretKey: appValues.String("s3_secret_key"),
		S3Bucket:    appValues.String("s3_bucket"),
		S3UseSSL:    appValues.Bool("s3_use_ssl"),

		AdminEmails:          splitEmails(appValues.String("admin_emails")),
		AdminInitialPassword: appValues.String("admin_initial_password"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

func splitEmails(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation. It runs
// before any backends connect, so misconfiguration fails fast.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.Persistence {
	case "local":
		if appCfg.LocalDataPath == "" {
			return fmt.Errorf("local persistence requires local_data_path")
		}
	case "mongo":
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	default:
		return fmt.Errorf("persistence must be 'local' or 'mongo', got %q", appCfg.Persistence)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("local storage requires storage_local_path")
		}
	case "s3":
		if appCfg.S3Endpoint == "" || appCfg.S3AccessKey == "" || appCfg.S3SecretKey == "" {
			return fmt.Errorf("s3 storage requires s3_endpoint, s3_access_key and s3_secret_key")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	if len(appCfg.AdminEmails) > 0 && appCfg.AdminInitialPassword == "" {
		return fmt.Errorf("admin_emails is set but admin_initial_password is empty")
	}

	return nil
}
