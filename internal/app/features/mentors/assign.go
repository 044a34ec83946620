// internal/app/features/mentors/assign.go
package mentors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/store/mentorassign"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// assignmentRow is an assignment with both names resolved.
type assignmentRow struct {
	models.MentorAssignment
	MentorName  string `json:"mentor_name"`
	StudentName string `json:"student_name"`
}

// ServeList handles GET /api/mentor-assignments.
// Admins see every assignment (?mentor= and ?student= narrow it);
// mentors see only their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, uid, _ := authz.UserCtx(r)

	q := r.URL.Query()
	var mentorID, studentID primitive.ObjectID
	for _, p := range []struct {
		key string
		dst *primitive.ObjectID
	}{{"mentor", &mentorID}, {"student", &studentID}} {
		if v := q.Get(p.key); v != "" {
			oid, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				respond.BadRequest(w, "Invalid "+p.key+" id.")
				return
			}
			*p.dst = oid
		}
	}
	if role == models.RoleMentor {
		mentorID = uid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "mentors.list")
	defer cancel()

	var (
		list []models.MentorAssignment
		err  error
	)
	switch {
	case !mentorID.IsZero():
		list, err = h.Assignments.ListByMentor(ctx, mentorID)
	case !studentID.IsZero():
		list, err = h.Assignments.ListByStudent(ctx, studentID)
	default:
		list, err = h.Assignments.ListAll(ctx)
	}
	if err != nil {
		respond.ServerError(w, h.Log, "list mentor assignments failed", err)
		return
	}
	if !mentorID.IsZero() && !studentID.IsZero() {
		out := list[:0]
		for _, a := range list {
			if a.StudentID == studentID {
				out = append(out, a)
			}
		}
		list = out
	}

	ids := make([]primitive.ObjectID, 0, 2*len(list))
	for _, a := range list {
		ids = append(ids, a.MentorID, a.StudentID)
	}
	names, err := h.Users.NamesByIDs(ctx, ids)
	if err != nil {
		respond.ServerError(w, h.Log, "load user names failed", err)
		return
	}

	rows := make([]assignmentRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, assignmentRow{MentorAssignment: a, MentorName: names[a.MentorID], StudentName: names[a.StudentID]})
	}
	respond.OK(w, map[string]any{"assignments": rows})
}

type createInput struct {
	MentorID  string `json:"mentor_id" validate:"required,objectid" label:"Mentor"`
	StudentID string `json:"student_id" validate:"required,objectid" label:"Student"`
}

// HandleCreate handles POST /api/mentor-assignments. The unique
// (mentor_id, student_id) index turns a repeat into 409.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	mentorID, _ := primitive.ObjectIDFromHex(in.MentorID)
	studentID, _ := primitive.ObjectIDFromHex(in.StudentID)
	_, adminName, adminID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mentors.create")
	defer cancel()

	mentor, err := h.Users.GetRole(ctx, mentorID, models.RoleMentor)
	if shared.IsNotFound(err) {
		respond.BadRequest(w, "Mentor not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load mentor failed", err, zap.String("mentor_id", mentorID.Hex()))
		return
	}
	student, err := h.Users.GetRole(ctx, studentID, models.RoleStudent)
	if shared.IsNotFound(err) {
		respond.BadRequest(w, "Student not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load student failed", err, zap.String("student_id", studentID.Hex()))
		return
	}

	a, err := h.Assignments.Create(ctx, models.MentorAssignment{
		MentorID:      mentorID,
		StudentID:     studentID,
		CreatedByID:   adminID,
		CreatedByName: adminName,
	})
	if errors.Is(err, mentorassign.ErrDuplicateAssignment) {
		h.Metrics.DuplicateRejected("mentor_assignment")
		respond.Conflict(w, "This mentor is already assigned to that student.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "create mentor assignment failed", err,
			zap.String("mentor_id", mentorID.Hex()), zap.String("student_id", studentID.Hex()))
		return
	}

	h.AuditLog.MentorAssignment(ctx, r, audit.EventMentorAssigned, mentorID, studentID)
	if err := h.Events.Publish(ctx, events.SubjectMentorAssigned, events.MentorAssigned{
		AssignmentID: a.ID,
		MentorID:     mentorID,
		MentorName:   mentor.FullName,
		StudentID:    studentID,
		StudentName:  student.FullName,
		At:           a.CreatedAt,
	}); err != nil {
		h.Log.Warn("publish mentor event failed", zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
	}

	respond.Created(w, assignmentRow{MentorAssignment: a, MentorName: mentor.FullName, StudentName: student.FullName})
}

// HandleDelete handles DELETE /api/mentor-assignments/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mentors.delete")
	defer cancel()

	a, err := h.Assignments.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Assignment not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load mentor assignment failed", err, zap.String("assignment_id", id.Hex()))
		return
	}
	if _, err := h.Assignments.Delete(ctx, id); err != nil {
		respond.ServerError(w, h.Log, "delete mentor assignment failed", err, zap.String("assignment_id", id.Hex()))
		return
	}

	h.AuditLog.MentorAssignment(ctx, r, audit.EventMentorRemoved, a.MentorID, a.StudentID)
	respond.NoContent(w)
}
