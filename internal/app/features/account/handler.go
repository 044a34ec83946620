// internal/app/features/account/handler.go
package account

import (
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.AuthLimiter
	Log        *zap.Logger
}

// NewHandler constructs the account handler. limiter may be nil to
// disable attempt limiting.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.AuthLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Users:      userstore.New(db),
		SessionMgr: sm,
		AuditLog:   audit,
		Limiter:    limiter,
		Log:        logger,
	}
}
