// internal/app/features/enrollments/enroll.go
package enrollments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	lessonstore "github.com/dalemusser/learnhub/internal/app/store/lessons"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/app/system/txn"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type enrollInput struct {
	CourseID  string `json:"course_id" validate:"required,objectid" label:"Course"`
	StudentID string `json:"student_id" validate:"omitempty,objectid" label:"Student"`
}

// HandleEnroll handles POST /api/enrollments.
//
// Students enroll themselves; admins may pass student_id. Free courses are
// open to anyone; paid courses need a succeeded payment for the pair. The
// unique (student_id, course_id) index rejects a second enrollment.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	var in enrollInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	courseID, _ := primitive.ObjectIDFromHex(in.CourseID)
	studentID := uid
	if in.StudentID != "" {
		studentID, _ = primitive.ObjectIDFromHex(in.StudentID)
	}
	if studentID != uid && !authz.IsAdmin(r) {
		respond.Forbidden(w, "You can only enroll yourself.")
		return
	}
	if studentID == uid && !authz.IsStudent(r) && !authz.IsAdmin(r) {
		respond.Forbidden(w, "Only students can enroll in courses.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "enrollments.create")
	defer cancel()

	if studentID != uid {
		if _, err := h.Users.GetRole(ctx, studentID, models.RoleStudent); err != nil {
			if shared.IsNotFound(err) {
				respond.BadRequest(w, "Student not found.")
				return
			}
			respond.ServerError(w, h.Log, "load student failed", err, zap.String("student_id", studentID.Hex()))
			return
		}
	}

	course, err := h.Courses.GetByID(ctx, courseID)
	if shared.IsNotFound(err) || (err == nil && !course.Published) {
		respond.NotFound(w, "Course not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load course failed", err, zap.String("course_id", courseID.Hex()))
		return
	}

	if !course.IsFree() {
		paid, err := h.Payments.HasSucceeded(ctx, studentID, courseID)
		if err != nil {
			respond.ServerError(w, h.Log, "check payment failed", err,
				zap.String("student_id", studentID.Hex()), zap.String("course_id", courseID.Hex()))
			return
		}
		if !paid {
			respond.Error(w, http.StatusPaymentRequired, "This course requires a completed payment before enrolling.")
			return
		}
	}

	var enr models.Enrollment
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		enr, err = h.Enrollments.Create(ctx, studentID, courseID)
		if err != nil {
			return err
		}
		return h.Courses.IncEnrollmentCount(ctx, courseID, 1)
	})
	if errors.Is(err, enrollmentstore.ErrDuplicateEnrollment) {
		h.Metrics.DuplicateRejected("enrollment")
		respond.Conflict(w, "This student is already enrolled in that course.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "create enrollment failed", err,
			zap.String("student_id", studentID.Hex()), zap.String("course_id", courseID.Hex()))
		return
	}

	// enrollment_count drives the popular sort
	h.Cache.Invalidate(ctx)
	h.Metrics.EnrollmentCreated()
	h.AuditLog.Enrollment(ctx, r, audit.EventEnrolled, studentID, courseID)
	if err := h.Events.Publish(ctx, events.SubjectEnrollmentCreated, events.EnrollmentCreated{
		EnrollmentID: enr.ID,
		StudentID:    studentID,
		CourseID:     courseID,
		CourseTitle:  course.Title,
		At:           enr.EnrolledAt,
	}); err != nil {
		h.Log.Warn("publish enrollment event failed", zap.String("enrollment_id", enr.ID.Hex()), zap.Error(err))
	}

	respond.Created(w, enrollmentRow{Enrollment: enr, CourseTitle: course.Title})
}

// loadOwned loads the {id} enrollment and checks the caller may act for
// its student. It writes the error response and returns nil on failure.
func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Enrollment {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return nil
	}
	e, err := h.Enrollments.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Enrollment not found.")
		return nil
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load enrollment failed", err, zap.String("enrollment_id", id.Hex()))
		return nil
	}
	if !authz.CanActForStudent(r, e.StudentID) {
		// not revealing other students' enrollments
		respond.NotFound(w, "Enrollment not found.")
		return nil
	}
	return e
}

// HandleUnenroll handles DELETE /api/enrollments/{id}. The student's
// progress and completed lessons for the course go with it.
func (h *Handler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "enrollments.delete")
	defer cancel()

	e := h.loadOwned(ctx, w, r)
	if e == nil {
		return
	}

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		n, err := h.Enrollments.Delete(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}
		if n == 0 {
			// already removed by a concurrent request
			return nil
		}
		if err := h.Courses.IncEnrollmentCount(ctx, e.CourseID, -1); err != nil {
			return err
		}
		if err := h.Progress.Delete(ctx, e.StudentID, e.CourseID); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		if _, err := h.Lessons.DeleteByStudentCourse(ctx, e.StudentID, e.CourseID); err != nil {
			return fmt.Errorf("delete completed lessons: %w", err)
		}
		return nil
	})
	if err != nil {
		respond.ServerError(w, h.Log, "delete enrollment failed", err, zap.String("enrollment_id", e.ID.Hex()))
		return
	}
	h.Cache.Invalidate(ctx)

	h.AuditLog.Enrollment(ctx, r, audit.EventUnenrolled, e.StudentID, e.CourseID)
	respond.NoContent(w)
}

type progressInput struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=100" label:"Progress"`
}

// HandleProgress handles PATCH /api/enrollments/{id}/progress.
// 100 marks the enrollment completed.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	var in progressInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "enrollments.progress")
	defer cancel()

	e := h.loadOwned(ctx, w, r)
	if e == nil {
		return
	}

	out, err := h.setProgress(ctx, e, *in.Progress)
	if err != nil {
		respond.ServerError(w, h.Log, "update progress failed", err, zap.String("enrollment_id", e.ID.Hex()))
		return
	}
	respond.OK(w, out)
}

// setProgress writes the enrollment and the matching progress record.
func (h *Handler) setProgress(ctx context.Context, e *models.Enrollment, pct float64) (*models.Enrollment, error) {
	out, err := h.Enrollments.SetProgress(ctx, e.ID, pct)
	if err != nil {
		return nil, err
	}
	if _, err := h.Progress.Upsert(ctx, e.StudentID, e.CourseID, pct); err != nil {
		return nil, err
	}
	return out, nil
}

type lessonInput struct {
	LessonKey string `json:"lesson_key" validate:"required,max=20" label:"Lesson"`
}

type lessonResponse struct {
	Lesson     models.CompletedLesson `json:"lesson"`
	Enrollment *models.Enrollment     `json:"enrollment"`
	Completed  int                    `json:"completed"`
	Total      int                    `json:"total"`
}

// HandleCompleteLesson handles POST /api/enrollments/{id}/lessons.
//
// lesson_key is "<module>.<topic>" (zero-based) and must name a topic of
// the course. Progress is recomputed from the completed lessons.
func (h *Handler) HandleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	var in lessonInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.lesson")
	defer cancel()

	e := h.loadOwned(ctx, w, r)
	if e == nil {
		return
	}

	course, err := h.Courses.GetByID(ctx, e.CourseID)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Course not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load course failed", err, zap.String("course_id", e.CourseID.Hex()))
		return
	}
	total := TotalLessons(*course)
	if !ValidLessonKey(*course, in.LessonKey) {
		respond.BadRequest(w, "That lesson does not exist in this course.")
		return
	}

	cl, err := h.Lessons.Complete(ctx, e.StudentID, e.CourseID, in.LessonKey)
	if errors.Is(err, lessonstore.ErrAlreadyCompleted) {
		h.Metrics.DuplicateRejected("lesson")
		respond.Conflict(w, "This lesson is already completed.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "record lesson failed", err, zap.String("enrollment_id", e.ID.Hex()))
		return
	}

	done, err := h.Lessons.ListByStudentCourse(ctx, e.StudentID, e.CourseID)
	if err != nil {
		respond.ServerError(w, h.Log, "count lessons failed", err, zap.String("enrollment_id", e.ID.Hex()))
		return
	}
	out, err := h.setProgress(ctx, e, LessonProgress(len(done), total))
	if err != nil {
		respond.ServerError(w, h.Log, "update progress failed", err, zap.String("enrollment_id", e.ID.Hex()))
		return
	}

	respond.Created(w, lessonResponse{Lesson: cl, Enrollment: out, Completed: len(done), Total: total})
}
