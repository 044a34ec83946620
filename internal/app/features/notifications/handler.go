// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	notificationstore "github.com/dalemusser/learnhub/internal/app/store/notifications"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxLimit = 200

type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notificationstore.New(db), Log: logger}
}

// Routes mounts the caller's notification inbox (typically at
// /api/notifications).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/read", h.HandleReadAll)
		pr.Post("/{id}/read", h.HandleRead)
	})

	return r
}

type listResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

// ServeList handles GET /api/notifications?unread=1&limit=N.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "1" || q.Get("unread") == "true"
	var limit int64
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			respond.BadRequest(w, "limit must be a positive number.")
			return
		}
		limit = min(n, maxLimit)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notifications.list")
	defer cancel()

	list, err := h.Notifications.ListByUser(ctx, uid, unreadOnly, limit)
	if err != nil {
		respond.ServerError(w, h.Log, "list notifications failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	unread, err := h.Notifications.CountUnread(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "count notifications failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.OK(w, listResponse{Notifications: list, Unread: unread})
}

// HandleRead handles POST /api/notifications/{id}/read. Other users'
// notifications are reported as not found.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notifications.read")
	defer cancel()

	err := h.Notifications.MarkRead(ctx, uid, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Notification not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "mark notification read failed", err, zap.String("notification_id", id.Hex()))
		return
	}
	respond.NoContent(w)
}

// HandleReadAll handles POST /api/notifications/read.
func (h *Handler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notifications.read_all")
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "mark notifications read failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.OK(w, map[string]int64{"marked": n})
}
