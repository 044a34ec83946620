// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/mediaupload"
	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
//
// Redis and NATS are nil when not configured or unreachable at startup.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client
	NATS          *nats.Conn
	Metrics       *metrics.Metrics

	// services is filled in by Startup. WAFFLE passes DBDeps by value, so
	// the pointer is what lets BuildHandler and Shutdown see it.
	services *services
}

// services are the long-lived components built from config and backends.
type services struct {
	audit     *auditlog.Logger
	uploads   *mediaupload.Chain
	cache     *catalogcache.Cache
	publisher events.Publisher
	notifier  *workers.Notifier
	pruner    *workers.NotificationPrune
}

// redisCmdable returns the Redis client as an interface, or a true nil
// when Redis is disabled.
func (d DBDeps) redisCmdable() redis.Cmdable {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}
