// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for LearnHub.
//
// Values come from LEARNHUB_* environment variables, config files, or
// flags (see LoadConfig). WAFFLE's CoreConfig covers ports, TLS, logging
// and CORS; everything below is specific to this app.
//
// Optional backends (media host, object store, Redis, NATS) are disabled
// by leaving their address blank.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Sessions and bearer tokens
	SessionKey    string        // signing secret; 32+ chars in production
	SessionName   string        // cookie name (default learnhub-session)
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // cookie and token lifetime

	// Hosted media API (primary upload target)
	MediaHostBaseURL      string
	MediaHostCloudName    string
	MediaHostUploadPreset string

	// S3-compatible object store (upload fallback)
	ObjectStoreEndpoint  string // host:port, no scheme
	ObjectStoreAccessKey string
	ObjectStoreSecretKey string
	ObjectStoreBucket    string
	ObjectStoreUseSSL    bool
	ObjectStorePublicURL string

	// Catalog cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	// Domain events
	NATSURL string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditLogEnrollment string

	// Bootstrap admin, created once when both email and password are set
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Notification retention
	NotificationRetention     time.Duration
	NotificationPruneInterval time.Duration

	// Per-operation database timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutUpload time.Duration
}
