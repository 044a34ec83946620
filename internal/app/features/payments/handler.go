// internal/app/features/payments/handler.go
package payments

import (
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	paymentstore "github.com/dalemusser/learnhub/internal/app/store/payments"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves read-only payment history. Payments are written by the
// external checkout flow.
type Handler struct {
	Payments *paymentstore.Store
	Courses  *coursestore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Payments: paymentstore.New(db),
		Courses:  coursestore.New(db),
		Log:      logger,
	}
}

// Routes mounts GET / (typically at /api/payments).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeList)
	return r
}

type paymentsResponse struct {
	Payments []models.Payment `json:"payments"`
	Total    float64          `json:"total_succeeded"`
}

// ServeList handles GET /api/payments.
// Admins see every payment, creators those for their courses, and
// everyone else their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "payments.list")
	defer cancel()

	var (
		list []models.Payment
		err  error
	)
	switch role {
	case models.RoleAdmin:
		list, err = h.Payments.ListAll(ctx)
	case models.RoleCreator:
		var owned []models.Course
		owned, err = h.Courses.ListByCreator(ctx, uid)
		if err == nil {
			ids := make([]primitive.ObjectID, 0, len(owned))
			for _, c := range owned {
				ids = append(ids, c.ID)
			}
			list, err = h.Payments.ListByCourses(ctx, ids)
		}
	default:
		list, err = h.Payments.ListByStudent(ctx, uid)
	}
	if err != nil {
		respond.ServerError(w, h.Log, "list payments failed", err, zap.String("user_id", uid.Hex()))
		return
	}

	out := paymentsResponse{Payments: list}
	cents, _ := models.SucceededCents(list)
	out.Total = models.CentsToAmount(cents)
	respond.OK(w, out)
}
