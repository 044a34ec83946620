// internal/app/features/dashboard/admin.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/dashstats"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type adminData struct {
	Summary  dashstats.Summary    `json:"summary"`
	Overview dashstats.AdminStats `json:"overview"`
	Courses  int                  `json:"courses"`
}

// ServeAdmin handles GET /api/dashboard/admin. Every collection is re-read
// on each call.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard.admin")
	defer cancel()

	users, err := h.Users.List(ctx, "")
	if err != nil {
		respond.ServerError(w, h.Log, "load users failed", err)
		return
	}
	enrollments, err := h.Enrollments.ListAll(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "load enrollments failed", err)
		return
	}
	progress, err := h.Progress.ListAll(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "load progress failed", err)
		return
	}
	completed, err := h.Lessons.ListAll(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "load completed lessons failed", err)
		return
	}
	payments, err := h.Payments.ListAll(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "load payments failed", err)
		return
	}
	courses, err := h.Courses.ListAll(ctx)
	if err != nil {
		respond.ServerError(w, h.Log, "load courses failed", err)
		return
	}

	h.Log.Debug("admin dashboard served", zap.Int("users", len(users)), zap.Int("enrollments", len(enrollments)))

	respond.OK(w, adminData{
		Summary:  dashstats.Summarize(users, enrollments, progress, completed),
		Overview: dashstats.AdminOverview(users, enrollments, payments),
		Courses:  len(courses),
	})
}
