// internal/app/features/users/handler.go
package users

import (
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	lessonstore "github.com/dalemusser/learnhub/internal/app/store/lessons"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	notificationstore "github.com/dalemusser/learnhub/internal/app/store/notifications"
	progressstore "github.com/dalemusser/learnhub/internal/app/store/progress"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves admin management of accounts.
type Handler struct {
	DB            *mongo.Database
	Users         *userstore.Store
	Courses       *coursestore.Store
	Enrollments   *enrollmentstore.Store
	Progress      *progressstore.Store
	Lessons       *lessonstore.Store
	Mentors       *mentorassign.Store
	Notifications *notificationstore.Store
	Cache         *catalogcache.Cache
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, cache *catalogcache.Cache, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Users:         userstore.New(db),
		Courses:       coursestore.New(db),
		Enrollments:   enrollmentstore.New(db),
		Progress:      progressstore.New(db),
		Lessons:       lessonstore.New(db),
		Mentors:       mentorassign.New(db),
		Notifications: notificationstore.New(db),
		Cache:         cache,
		AuditLog:      audit,
		Log:           logger,
	}
}
