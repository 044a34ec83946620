// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/dalemusser/learnhub/internal/app/features/account"
	auditlogfeature "github.com/dalemusser/learnhub/internal/app/features/auditlog"
	coursesfeature "github.com/dalemusser/learnhub/internal/app/features/courses"
	dashboardfeature "github.com/dalemusser/learnhub/internal/app/features/dashboard"
	enrollmentsfeature "github.com/dalemusser/learnhub/internal/app/features/enrollments"
	healthfeature "github.com/dalemusser/learnhub/internal/app/features/health"
	mentorsfeature "github.com/dalemusser/learnhub/internal/app/features/mentors"
	notificationsfeature "github.com/dalemusser/learnhub/internal/app/features/notifications"
	paymentsfeature "github.com/dalemusser/learnhub/internal/app/features/payments"
	uploadsfeature "github.com/dalemusser/learnhub/internal/app/features/uploads"
	usersfeature "github.com/dalemusser/learnhub/internal/app/features/users"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for LearnHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. The router times every request for Prometheus,
// resolves the caller from the session cookie or bearer token, and mounts
// the JSON API under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	db := deps.MongoDatabase
	svc := deps.services

	r := chi.NewRouter()
	r.Use(deps.Metrics.Middleware)
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.NotFound(w, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// Health check and metrics for load balancers and scrapers
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.redisCmdable(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		accountHandler := accountfeature.NewHandler(db, sessionMgr, svc.audit, ratelimit.NewAuthLimiter(), logger)
		api.Mount("/account", accountfeature.Routes(accountHandler, sessionMgr))

		coursesHandler := coursesfeature.NewHandler(db, svc.cache, svc.uploads, svc.publisher, svc.audit, logger)
		api.Mount("/courses", coursesfeature.Routes(coursesHandler, sessionMgr))

		enrollmentsHandler := enrollmentsfeature.NewHandler(db, svc.cache, svc.publisher, deps.Metrics, svc.audit, logger)
		api.Mount("/enrollments", enrollmentsfeature.Routes(enrollmentsHandler, sessionMgr))

		mentorsHandler := mentorsfeature.NewHandler(db, svc.publisher, deps.Metrics, svc.audit, logger)
		api.Mount("/mentor-assignments", mentorsfeature.Routes(mentorsHandler, sessionMgr))

		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		usersHandler := usersfeature.NewHandler(db, svc.cache, svc.audit, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

		paymentsHandler := paymentsfeature.NewHandler(db, logger)
		api.Mount("/payments", paymentsfeature.Routes(paymentsHandler, sessionMgr))

		uploadsHandler := uploadsfeature.NewHandler(svc.uploads, logger)
		api.Mount("/uploads", uploadsfeature.Routes(uploadsHandler, sessionMgr))

		notificationsHandler := notificationsfeature.NewHandler(db, logger)
		api.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(db, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}
