// internal/app/features/courses/handler.go
package courses

import (
	"context"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	lessonstore "github.com/dalemusser/learnhub/internal/app/store/lessons"
	progressstore "github.com/dalemusser/learnhub/internal/app/store/progress"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Courses     *coursestore.Store
	Enrollments *enrollmentstore.Store
	Progress    *progressstore.Store
	Lessons     *lessonstore.Store
	Cache       *catalogcache.Cache
	Uploads     shared.FileUploader
	Events      events.Publisher
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs the courses handler. cache may be a disabled
// Cache; publisher may be events.Nop{}.
func NewHandler(db *mongo.Database, cache *catalogcache.Cache, uploads shared.FileUploader, publisher events.Publisher, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		DB:          db,
		Courses:     coursestore.New(db),
		Enrollments: enrollmentstore.New(db),
		Progress:    progressstore.New(db),
		Lessons:     lessonstore.New(db),
		Cache:       cache,
		Uploads:     uploads,
		Events:      publisher,
		AuditLog:    audit,
		Log:         logger,
	}
}

// published returns the full published catalog, from the cache when one
// is configured.
func (h *Handler) published(ctx context.Context) ([]models.Course, error) {
	if h.Cache == nil {
		return h.Courses.ListPublished(ctx)
	}
	return h.Cache.Courses(ctx, h.Courses.ListPublished)
}

// invalidate drops the cached catalog after any course write.
func (h *Handler) invalidate(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
}
