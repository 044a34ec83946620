// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minSessionKeyLen is enforced outside dev.
const minSessionKeyLen = 32

// appConfigKeys defines the configuration keys for LearnHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LEARNHUB_MONGO_URI, LEARNHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "learnhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session and token signing key (must be strong in production)"},
	{Name: "session_name", Default: "learnhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie and bearer token lifetime"},

	// Media uploads
	{Name: "media_host_base_url", Default: "https://api.cloudinary.com/v1_1", Desc: "Hosted media API base URL"},
	{Name: "media_host_cloud_name", Default: "", Desc: "Hosted media cloud name (blank disables)"},
	{Name: "media_host_upload_preset", Default: "", Desc: "Hosted media unsigned upload preset"},
	{Name: "object_store_endpoint", Default: "", Desc: "S3-compatible endpoint host:port (blank disables)"},
	{Name: "object_store_access_key", Default: "", Desc: "Object store access key"},
	{Name: "object_store_secret_key", Default: "", Desc: "Object store secret key"},
	{Name: "object_store_bucket", Default: "", Desc: "Object store bucket"},
	{Name: "object_store_use_ssl", Default: true, Desc: "Use TLS for the object store"},
	{Name: "object_store_public_url", Default: "", Desc: "Public base URL for stored objects (optional)"},

	// Catalog cache
	{Name: "redis_addr", Default: "", Desc: "Redis host:port for the catalog cache (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "catalog_cache_ttl", Default: "5m", Desc: "Catalog cache TTL"},

	// Domain events
	{Name: "nats_url", Default: "", Desc: "NATS URL for domain events (blank uses in-process delivery)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_enrollment", Default: "all", Desc: "Enrollment event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin (created on startup if missing)"},
	{Name: "admin_password", Default: "", Desc: "Password for the bootstrap admin"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name for the bootstrap admin"},

	// Notifications
	{Name: "notification_retention", Default: "720h", Desc: "How long read notifications are kept"},
	{Name: "notification_prune_interval", Default: "1h", Desc: "How often read notifications are pruned"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list and batch operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for dashboards and cascades"},
	{Name: "timeout_upload", Default: "60s", Desc: "Timeout for media uploads"},
}

// LoadConfig loads WAFFLE core config and LearnHub's app config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LEARNHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEARNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),

		MediaHostBaseURL:      appValues.String("media_host_base_url"),
		MediaHostCloudName:    appValues.String("media_host_cloud_name"),
		MediaHostUploadPreset: appValues.String("media_host_upload_preset"),

		ObjectStoreEndpoint:  appValues.String("object_store_endpoint"),
		ObjectStoreAccessKey: appValues.String("object_store_access_key"),
		ObjectStoreSecretKey: appValues.String("object_store_secret_key"),
		ObjectStoreBucket:    appValues.String("object_store_bucket"),
		ObjectStoreUseSSL:    appValues.Bool("object_store_use_ssl"),
		ObjectStorePublicURL: appValues.String("object_store_public_url"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		CatalogTTL:    appValues.Duration("catalog_cache_ttl", 5*time.Minute),

		NATSURL: appValues.String("nats_url"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogEnrollment: appValues.String("audit_log_enrollment"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		NotificationRetention:     appValues.Duration("notification_retention", 30*24*time.Hour),
		NotificationPruneInterval: appValues.Duration("notification_prune_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		TimeoutUpload: appValues.Duration("timeout_upload", 60*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before connecting. Outside dev the session key
// must be long enough to sign tokens. A partially configured object store
// or a half-set admin bootstrap is rejected rather than silently ignored.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg)
}

func validateAppConfig(env string, appCfg AppConfig) error {
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if env != "dev" && len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters outside dev", minSessionKeyLen)
	}

	if appCfg.ObjectStoreEndpoint != "" {
		if appCfg.ObjectStoreBucket == "" || appCfg.ObjectStoreAccessKey == "" || appCfg.ObjectStoreSecretKey == "" {
			return fmt.Errorf("object_store_endpoint requires object_store_bucket, object_store_access_key and object_store_secret_key")
		}
	}

	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_email and admin_password must be set together")
	}
	if appCfg.AdminPassword != "" && len(appCfg.AdminPassword) < auth.MinPasswordLength {
		return fmt.Errorf("admin_password must be at least %d characters", auth.MinPasswordLength)
	}
	if !inputval.FitsPasswordLimit(appCfg.AdminPassword) {
		return fmt.Errorf("admin_password must be at most %d bytes", inputval.MaxPasswordBytes)
	}

	// time.NewTicker panics on a non-positive interval
	if appCfg.NotificationPruneInterval <= 0 {
		return fmt.Errorf("notification_prune_interval must be positive (got %s)", appCfg.NotificationPruneInterval)
	}
	if appCfg.NotificationRetention <= 0 {
		return fmt.Errorf("notification_retention must be positive (got %s)", appCfg.NotificationRetention)
	}

	for _, a := range []struct{ name, value string }{
		{"audit_log_auth", appCfg.AuditLogAuth},
		{"audit_log_admin", appCfg.AuditLogAdmin},
		{"audit_log_enrollment", appCfg.AuditLogEnrollment},
	} {
		switch a.value {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", a.name, a.value)
		}
	}
	return nil
}
