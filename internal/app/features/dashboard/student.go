// internal/app/features/dashboard/student.go
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

type studentData struct {
	Courses         []dashstats.StudentCourse `json:"courses"`
	Completed       int                       `json:"completed"`
	AverageProgress float64                   `json:"average_progress"`
	Mentors         []string                  `json:"mentors"`
}

// ServeStudent handles GET /api/dashboard/student. Admins pass ?student=
// to view a student's dashboard.
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)
	studentID := uid
	if s := r.URL.Query().Get("student"); s != "" && authz.IsAdmin(r) {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.BadRequest(w, "Invalid student id.")
			return
		}
		studentID = oid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard.student")
	defer cancel()

	enrollments, err := h.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		respond.ServerError(w, h.Log, "load enrollments failed", err, zap.String("student_id", studentID.Hex()))
		return
	}
	ids := make([]primitive.ObjectID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	courses, err := h.Courses.GetMany(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load courses failed", err)
		return
	}
	completed, err := h.Lessons.ListByStudent(ctx, studentID)
	if err != nil {
		respond.ServerError(w, h.Log, "load completed lessons failed", err)
		return
	}
	assigned, err := h.Mentors.ListByStudent(ctx, studentID)
	if err != nil {
		respond.ServerError(w, h.Log, "load mentors failed", err)
		return
	}
	mentorIDs := make([]primitive.ObjectID, 0, len(assigned))
	for _, a := range assigned {
		mentorIDs = append(mentorIDs, a.MentorID)
	}
	names, err := h.Users.NamesByIDs(ctx, mentorIDs)
	if err != nil {
		respond.ServerError(w, h.Log, "load mentor names failed", err)
		return
	}

	rows := dashstats.StudentOverview(enrollments, courses, completed)
	data := studentData{Courses: rows, Mentors: make([]string, 0, len(assigned))}
	var sum float64
	for _, row := range rows {
		sum += row.Progress
		if row.Status == models.EnrollmentCompleted {
			data.Completed++
		}
	}
	data.AverageProgress = dashstats.Mean(sum, len(rows))
	for _, a := range assigned {
		if n, ok := names[a.MentorID]; ok {
			data.Mentors = append(data.Mentors, n)
		}
	}
	respond.OK(w, data)
}
