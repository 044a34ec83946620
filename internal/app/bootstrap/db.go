// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/indexes"
	"github.com/dalemusser/learnhub/internal/app/system/legacyfields"
	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and to the optional Redis and NATS backends.
//
// MongoDB is required. Redis and NATS failures are logged and the app runs
// without them: the catalog reads straight from MongoDB and events are
// delivered in process.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Upload: appCfg.TimeoutUpload,
	})

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		logger.Error("mongo ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Metrics:       metrics.New(),
		services:      &services{},
	}

	if appCfg.RedisAddr != "" {
		rdb, err := catalogcache.Connect(pingCtx, appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable; catalog cache disabled", zap.Error(err))
		} else {
			deps.Redis = rdb
		}
	}

	if appCfg.NATSURL != "" {
		conn, err := events.Connect(appCfg.NATSURL, "learnhub", logger)
		if err != nil {
			logger.Warn("nats unavailable; events delivered in process", zap.Error(err))
		} else {
			deps.NATS = conn
		}
	}

	return deps, nil
}

// EnsureSchema creates indexes and collection validators, migrates legacy
// student reference fields, and creates the bootstrap admin.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Legacy documents have no student_id yet and would collide as nulls
	// under the unique student/course indexes.
	res, err := legacyfields.Migrate(ctx, db)
	if err != nil {
		logger.Error("legacy field migration failed", zap.Error(err))
		return err
	}
	if n := res.Total(); n > 0 {
		logger.Info("migrated legacy student fields", zap.Int64("documents", n))
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}

	return ensureAdmin(ctx, deps, appCfg, logger)
}

// ensureAdmin creates the configured admin once. An existing account with
// that email is left as it is.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}

	hash, err := auth.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := userstore.New(deps.MongoDatabase).EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminName, hash)
	if err != nil {
		logger.Error("ensure admin failed", zap.Error(err))
		return err
	}
	if created {
		logger.Info("created bootstrap admin", zap.String("email", appCfg.AdminEmail))
	}
	return nil
}
