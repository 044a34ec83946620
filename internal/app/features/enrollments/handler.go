// internal/app/features/enrollments/handler.go
package enrollments

import (
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	lessonstore "github.com/dalemusser/learnhub/internal/app/store/lessons"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	paymentstore "github.com/dalemusser/learnhub/internal/app/store/payments"
	progressstore "github.com/dalemusser/learnhub/internal/app/store/progress"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Enrollments *enrollmentstore.Store
	Courses     *coursestore.Store
	Progress    *progressstore.Store
	Lessons     *lessonstore.Store
	Payments    *paymentstore.Store
	Mentors     *mentorassign.Store
	Users       *userstore.Store
	Cache       *catalogcache.Cache
	Events      events.Publisher
	Metrics     *metrics.Metrics
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs the enrollments handler. cache and m may be nil.
func NewHandler(db *mongo.Database, cache *catalogcache.Cache, publisher events.Publisher, m *metrics.Metrics, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		DB:          db,
		Enrollments: enrollmentstore.New(db),
		Courses:     coursestore.New(db),
		Progress:    progressstore.New(db),
		Lessons:     lessonstore.New(db),
		Payments:    paymentstore.New(db),
		Mentors:     mentorassign.New(db),
		Users:       userstore.New(db),
		Cache:       cache,
		Events:      publisher,
		Metrics:     m,
		AuditLog:    audit,
		Log:         logger,
	}
}
