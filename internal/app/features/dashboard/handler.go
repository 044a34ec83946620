// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	lessonstore "github.com/dalemusser/learnhub/internal/app/store/lessons"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	paymentstore "github.com/dalemusser/learnhub/internal/app/store/payments"
	progressstore "github.com/dalemusser/learnhub/internal/app/store/progress"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users       *userstore.Store
	Courses     *coursestore.Store
	Enrollments *enrollmentstore.Store
	Progress    *progressstore.Store
	Lessons     *lessonstore.Store
	Payments    *paymentstore.Store
	Mentors     *mentorassign.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       userstore.New(db),
		Courses:     coursestore.New(db),
		Enrollments: enrollmentstore.New(db),
		Progress:    progressstore.New(db),
		Lessons:     lessonstore.New(db),
		Payments:    paymentstore.New(db),
		Mentors:     mentorassign.New(db),
		Log:         logger,
	}
}

// ServeDashboard dispatches GET /api/dashboard to the caller's role view.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	switch role {
	case models.RoleAdmin:
		h.ServeAdmin(w, r)
	case models.RoleCreator:
		h.ServeCreator(w, r)
	case models.RoleMentor:
		h.ServeMentor(w, r)
	default:
		h.ServeStudent(w, r)
	}
}
