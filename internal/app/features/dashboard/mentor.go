// internal/app/features/dashboard/mentor.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/dashstats"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mentorStudent struct {
	dashstats.UserStats
	Name string `json:"name"`
}

type mentorData struct {
	Students        []mentorStudent `json:"students"`
	AverageProgress float64         `json:"average_progress"`
}

// ServeMentor handles GET /api/dashboard/mentor: progress of the students
// assigned to the caller.
func (h *Handler) ServeMentor(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard.mentor")
	defer cancel()

	assigned, err := h.Mentors.ListByMentor(ctx, uid)
	if err != nil {
		respond.ServerError(w, h.Log, "load assignments failed", err, zap.String("mentor_id", uid.Hex()))
		return
	}
	ids := make([]primitive.ObjectID, 0, len(assigned))
	for _, a := range assigned {
		ids = append(ids, a.StudentID)
	}
	names, err := h.Users.NamesByIDs(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load student names failed", err)
		return
	}

	enrollments, err := h.Enrollments.ListByStudents(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load enrollments failed", err)
		return
	}
	progress, err := h.Progress.ListByStudents(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load progress failed", err)
		return
	}
	completed, err := h.Lessons.ListByStudents(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load completed lessons failed", err)
		return
	}

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id, FullName: names[id], Role: models.RoleStudent})
	}
	sum := dashstats.Summarize(users, enrollments, progress, completed)

	data := mentorData{Students: make([]mentorStudent, 0, len(sum.PerUser)), AverageProgress: sum.AverageProgress}
	for _, u := range sum.PerUser {
		data.Students = append(data.Students, mentorStudent{UserStats: u, Name: names[u.UserID]})
	}
	respond.OK(w, data)
}
