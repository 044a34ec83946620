// internal/app/features/courses/edit.go
package courses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/app/system/txn"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

type quizInput struct {
	Question string   `json:"question" validate:"required,max=500" label:"Quiz question"`
	Options  []string `json:"options" validate:"min=2,max=10,dive,required,max=300" label:"Quiz options"`
	Answer   int      `json:"answer" validate:"gte=0" label:"Quiz answer"`
}

type topicInput struct {
	Title    string      `json:"title" validate:"required,max=200" label:"Topic title"`
	Kind     string      `json:"kind" validate:"required,oneof=text video quiz" label:"Topic kind"`
	Body     string      `json:"body" validate:"max=100000" label:"Topic body"`
	VideoURL string      `json:"video_url" validate:"omitempty,httpurl" label:"Video URL"`
	Quiz     []quizInput `json:"quiz" validate:"dive" label:"Quiz"`
}

type moduleInput struct {
	Title  string       `json:"title" validate:"required,max=200" label:"Module title"`
	Topics []topicInput `json:"topics" validate:"dive" label:"Topics"`
}

type courseInput struct {
	Title         string        `json:"title" validate:"required,max=200" label:"Title"`
	Description   string        `json:"description" validate:"max=20000" label:"Description"`
	Category      string        `json:"category" validate:"max=100" label:"Category"`
	Level         string        `json:"level" validate:"max=100" label:"Level"`
	Price         float64       `json:"price" validate:"gte=0" label:"Price"`
	DurationHours float64       `json:"duration_hours" validate:"gte=0" label:"Duration"`
	CurriculumURL string        `json:"curriculum_url" validate:"omitempty,httpurl" label:"Curriculum URL"`
	Modules       []moduleInput `json:"modules" validate:"dive" label:"Modules"`
}

// toCourse converts validated input, sanitizing every HTML field. A
// non-empty msg describes the first structural problem.
func (in courseInput) toCourse() (c models.Course, msg string) {
	c = models.Course{
		Title:         in.Title,
		Description:   htmlsanitize.PrepareRichText(in.Description),
		Category:      in.Category,
		Level:         in.Level,
		Price:         in.Price,
		DurationHours: in.DurationHours,
		CurriculumURL: in.CurriculumURL,
	}
	for mi, m := range in.Modules {
		mod := models.Module{Title: m.Title}
		for ti, t := range m.Topics {
			topic := models.Topic{
				Title:    t.Title,
				Kind:     t.Kind,
				Body:     htmlsanitize.PrepareRichText(t.Body),
				VideoURL: t.VideoURL,
			}
			if t.Kind == models.TopicVideo && t.VideoURL == "" {
				return models.Course{}, fmt.Sprintf("Topic %d.%d needs a video URL.", mi+1, ti+1)
			}
			if t.Kind == models.TopicQuiz && len(t.Quiz) == 0 {
				return models.Course{}, fmt.Sprintf("Topic %d.%d needs at least one quiz question.", mi+1, ti+1)
			}
			for _, q := range t.Quiz {
				if q.Answer >= len(q.Options) {
					return models.Course{}, fmt.Sprintf("Quiz answer for %q is out of range.", q.Question)
				}
				topic.Quiz = append(topic.Quiz, models.QuizQuestion{
					Question: q.Question,
					Options:  q.Options,
					Answer:   q.Answer,
				})
			}
			mod.Topics = append(mod.Topics, topic)
		}
		c.Modules = append(c.Modules, mod)
	}
	return c, ""
}

// HandleCreate handles POST /api/courses. The new course is a draft owned
// by the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Please sign in.")
		return
	}

	var in courseInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	c, msg := in.toCourse()
	if msg != "" {
		respond.BadRequest(w, msg)
		return
	}
	c.CreatorID = &uid
	c.Published = false

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "courses.create")
	defer cancel()

	created, err := h.Courses.Create(ctx, c)
	if err != nil {
		respond.ServerError(w, h.Log, "create course failed", err)
		return
	}

	h.invalidate(ctx)
	h.AuditLog.CourseChanged(ctx, r, audit.EventCourseCreated, created.ID, created.Title)
	respond.Created(w, created)
}

// loadManaged loads the {id} course and checks the caller may edit it.
// It writes the error response and returns nil on failure.
func (h *Handler) loadManaged(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Course {
	id, ok := shared.ParamID(w, r, "id")
	if !ok {
		return nil
	}
	c, err := h.Courses.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Course not found.")
		return nil
	}
	if err != nil {
		respond.ServerError(w, h.Log, "load course failed", err, zap.String("course_id", id.Hex()))
		return nil
	}
	if !authz.CanManageCourse(r, *c) {
		respond.Forbidden(w, "You can only manage your own courses.")
		return nil
	}
	return c
}

// HandleUpdate handles PUT /api/courses/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in courseInput
	if !shared.DecodeValid(w, r, &in) {
		return
	}
	upd, msg := in.toCourse()
	if msg != "" {
		respond.BadRequest(w, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "courses.update")
	defer cancel()

	c := h.loadManaged(ctx, w, r)
	if c == nil {
		return
	}

	out, err := h.Courses.Update(ctx, c.ID, upd)
	if shared.IsNotFound(err) {
		respond.NotFound(w, "Course not found.")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "update course failed", err, zap.String("course_id", c.ID.Hex()))
		return
	}

	h.invalidate(ctx)
	h.AuditLog.CourseChanged(ctx, r, audit.EventCourseUpdated, out.ID, out.Title)
	respond.OK(w, out)
}

// HandleDelete handles DELETE /api/courses/{id}. Enrollments, progress and
// completed lessons for the course are removed with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "courses.delete")
	defer cancel()

	c := h.loadManaged(ctx, w, r)
	if c == nil {
		return
	}

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Enrollments.DeleteByCourse(ctx, c.ID); err != nil {
			return fmt.Errorf("delete enrollments: %w", err)
		}
		if _, err := h.Progress.DeleteByCourse(ctx, c.ID); err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		if _, err := h.Lessons.DeleteByCourse(ctx, c.ID); err != nil {
			return fmt.Errorf("delete completed lessons: %w", err)
		}
		if _, err := h.Courses.Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		respond.ServerError(w, h.Log, "delete course failed", err, zap.String("course_id", c.ID.Hex()))
		return
	}

	h.invalidate(ctx)
	h.AuditLog.CourseChanged(ctx, r, audit.EventCourseDeleted, c.ID, c.Title)
	respond.NoContent(w)
}

type publishInput struct {
	Published *bool `json:"published"`
}

// HandlePublish handles POST /api/courses/{id}/publish. The body is
// optional; {"published": false} unpublishes.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	publish := true
	if r.ContentLength != 0 {
		var in publishInput
		if err := respond.Decode(w, r, &in); err != nil && !errors.Is(err, respond.ErrEmptyBody) {
			respond.BadRequest(w, "Invalid JSON body.")
			return
		}
		if in.Published != nil {
			publish = *in.Published
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "courses.publish")
	defer cancel()

	c := h.loadManaged(ctx, w, r)
	if c == nil {
		return
	}
	wasPublished := c.Published

	out, err := h.Courses.SetPublished(ctx, c.ID, publish)
	if err != nil {
		respond.ServerError(w, h.Log, "publish course failed", err, zap.String("course_id", c.ID.Hex()))
		return
	}

	h.invalidate(ctx)
	if publish && !wasPublished {
		h.AuditLog.CourseChanged(ctx, r, audit.EventCoursePublished, out.ID, out.Title)
		h.publishEvent(ctx, out)
	} else if publish != wasPublished {
		h.AuditLog.CourseChanged(ctx, r, audit.EventCourseUpdated, out.ID, out.Title)
	}
	respond.OK(w, out)
}

func (h *Handler) publishEvent(ctx context.Context, c *models.Course) {
	err := h.Events.Publish(ctx, events.SubjectCoursePublished, events.CoursePublished{
		CourseID:  c.ID,
		Title:     c.Title,
		CreatorID: c.CreatorID,
		At:        time.Now().UTC(),
	})
	if err != nil {
		h.Log.Warn("publish course event failed", zap.String("course_id", c.ID.Hex()), zap.Error(err))
	}
}
