// internal/app/features/courses/media.go
package courses

import (
	"net/http"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

const msgUploadFailed = "Upload failed. Please try again later."

// HandleThumbnail handles POST /api/courses/{id}/thumbnail with a
// multipart "file" that must be an image.
func (h *Handler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "courses.thumbnail")
	defer cancel()

	c := h.loadManaged(ctx, w, r)
	if c == nil {
		return
	}
	f, ok := shared.ReadUpload(w, r, "file")
	if !ok {
		return
	}
	if !f.IsImage() {
		respond.BadRequest(w, "Thumbnail must be an image.")
		return
	}

	url, err := h.Uploads.Upload(ctx, f)
	if err != nil {
		h.Log.Error("thumbnail upload failed", zap.String("course_id", c.ID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusBadGateway, msgUploadFailed)
		return
	}

	out, err := h.Courses.SetThumbnail(ctx, c.ID, url)
	if err != nil {
		respond.ServerError(w, h.Log, "save thumbnail failed", err, zap.String("course_id", c.ID.Hex()))
		return
	}

	h.invalidate(ctx)
	h.AuditLog.CourseChanged(ctx, r, audit.EventCourseUpdated, out.ID, out.Title)
	respond.OK(w, out)
}

// HandleAddResource handles POST /api/courses/{id}/resources: the file is
// uploaded and its metadata appended to the course.
func (h *Handler) HandleAddResource(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "courses.resource")
	defer cancel()

	c := h.loadManaged(ctx, w, r)
	if c == nil {
		return
	}
	f, ok := shared.ReadUpload(w, r, "file")
	if !ok {
		return
	}

	url, err := h.Uploads.Upload(ctx, f)
	if err != nil {
		h.Log.Error("resource upload failed", zap.String("course_id", c.ID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusBadGateway, msgUploadFailed)
		return
	}

	out, err := h.Courses.AddResource(ctx, c.ID, models.Resource{
		Name:        f.Name,
		URL:         url,
		ContentType: f.ContentType,
		Size:        f.Size(),
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		respond.ServerError(w, h.Log, "save resource failed", err, zap.String("course_id", c.ID.Hex()))
		return
	}

	h.invalidate(ctx)
	h.AuditLog.CourseChanged(ctx, r, audit.EventCourseUpdated, out.ID, out.Title)
	respond.Created(w, out)
}
