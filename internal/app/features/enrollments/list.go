// internal/app/features/enrollments/list.go
package enrollments

import (
	"context"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// enrollmentRow is an enrollment with its course title for display.
type enrollmentRow struct {
	models.Enrollment
	CourseTitle string `json:"course_title,omitempty"`
}

type listResponse struct {
	Enrollments []enrollmentRow `json:"enrollments"`
}

// ServeList handles GET /api/enrollments.
//
//   - student: own enrollments
//   - mentor: enrollments of assigned students (?student= narrows to one)
//   - creator: enrollments in the creator's courses
//   - admin: all, or one student's with ?student=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	var filterStudent *primitive.ObjectID
	if s := r.URL.Query().Get("student"); s != "" {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.BadRequest(w, "Invalid student id.")
			return
		}
		filterStudent = &oid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.list")
	defer cancel()

	list, status, msg, err := h.listFor(ctx, role, uid, filterStudent)
	if err != nil {
		respond.ServerError(w, h.Log, "list enrollments failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	if status != 0 {
		respond.Error(w, status, msg)
		return
	}

	rows, err := h.withTitles(ctx, list)
	if err != nil {
		respond.ServerError(w, h.Log, "load course titles failed", err)
		return
	}
	respond.OK(w, listResponse{Enrollments: rows})
}

// listFor applies the role rules. A non-zero status is an access error.
func (h *Handler) listFor(ctx context.Context, role string, uid primitive.ObjectID, student *primitive.ObjectID) ([]models.Enrollment, int, string, error) {
	switch role {
	case models.RoleAdmin:
		if student != nil {
			list, err := h.Enrollments.ListByStudent(ctx, *student)
			return list, 0, "", err
		}
		list, err := h.Enrollments.ListAll(ctx)
		return list, 0, "", err

	case models.RoleMentor:
		assigned, err := h.Mentors.ListByMentor(ctx, uid)
		if err != nil {
			return nil, 0, "", err
		}
		ids := make([]primitive.ObjectID, 0, len(assigned))
		for _, a := range assigned {
			if student == nil || a.StudentID == *student {
				ids = append(ids, a.StudentID)
			}
		}
		if student != nil && len(ids) == 0 {
			return nil, http.StatusForbidden, "That student is not assigned to you.", nil
		}
		list, err := h.Enrollments.ListByStudents(ctx, ids)
		return list, 0, "", err

	case models.RoleCreator:
		owned, err := h.Courses.ListByCreator(ctx, uid)
		if err != nil {
			return nil, 0, "", err
		}
		ids := make([]primitive.ObjectID, 0, len(owned))
		for _, c := range owned {
			ids = append(ids, c.ID)
		}
		list, err := h.Enrollments.ListByCourses(ctx, ids)
		if err != nil || student == nil {
			return list, 0, "", err
		}
		out := list[:0]
		for _, e := range list {
			if e.StudentID == *student {
				out = append(out, e)
			}
		}
		return out, 0, "", nil

	default:
		if student != nil && *student != uid {
			return nil, http.StatusForbidden, "You can only view your own enrollments.", nil
		}
		list, err := h.Enrollments.ListByStudent(ctx, uid)
		return list, 0, "", err
	}
}

func (h *Handler) withTitles(ctx context.Context, list []models.Enrollment) ([]enrollmentRow, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, e := range list {
		if !seen[e.CourseID] {
			seen[e.CourseID] = true
			ids = append(ids, e.CourseID)
		}
	}
	courses, err := h.Courses.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	rows := make([]enrollmentRow, 0, len(list))
	for _, e := range list {
		rows = append(rows, enrollmentRow{Enrollment: e, CourseTitle: titles[e.CourseID]})
	}
	return rows, nil
}
