// internal/app/features/mentors/handler.go
package mentors

import (
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Assignments *mentorassign.Store
	Users       *userstore.Store
	Events      events.Publisher
	Metrics     *metrics.Metrics
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, publisher events.Publisher, m *metrics.Metrics, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		Assignments: mentorassign.New(db),
		Users:       userstore.New(db),
		Events:      publisher,
		Metrics:     m,
		AuditLog:    audit,
		Log:         logger,
	}
}
