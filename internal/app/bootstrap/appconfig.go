package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to the order
// dashboard: the persistence backend, image storage, sessions, the
// admin allow-list, and Google OAuth.
type AppConfig struct {
	// Persistence backend: "local" (JSON files on disk) or "mongo".
	Persistence   string
	LocalDataPath string // data directory for the local backend
	MongoURI      string // MongoDB connection string
	MongoDatabase string // database name within MongoDB

	// Session management configuration
	SessionKey    string        // secret key for signing session cookies
	SessionName   string        // cookie name for sessions
	SessionDomain string        // cookie domain (blank means current host)
	SessionTTL    time.Duration // how long a session cookie stays valid

	// Image storage configuration
	StorageType      string // storage backend: "local" or "s3"
	StorageLocalPath string // local storage path (e.g. "./uploads/images")
	StorageLocalURL  string // URL prefix for serving local files

	// S3-compatible storage (only used if StorageType is "s3")
	S3Endpoint  string // e.g. "minio.internal:9000" or "s3.amazonaws.com"
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// Admin bootstrap: allow-listed emails sign in as admins; accounts
	// for them are created on startup if missing.
	AdminEmails          []string
	AdminInitialPassword string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks, e.g. "https://orders.krcapps.com"
	BaseURL string
}
