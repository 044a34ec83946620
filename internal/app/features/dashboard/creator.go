// internal/app/features/dashboard/creator.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/dashstats"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeCreator handles GET /api/dashboard/creator: per-course stats for
// the courses the caller owns.
func (h *Handler) ServeCreator(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard.creator")
	defer cancel()

	courses, err := h.Courses.ListByCreator(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "load courses failed", err, zap.String("creator_id", uid.Hex()))
		return
	}
	ids := make([]primitive.ObjectID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	enrollments, err := h.Enrollments.ListByCourses(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load enrollments failed", err)
		return
	}
	progress, err := h.Progress.ListByCourses(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load progress failed", err)
		return
	}
	payments, err := h.Payments.ListByCourses(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load payments failed", err)
		return
	}

	respond.OK(w, dashstats.CreatorOverview(courses, enrollments, progress, payments))
}
