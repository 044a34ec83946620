// internal/app/features/uploads/handler.go
package uploads

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/features/shared"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler accepts general media uploads (avatars, course media) and
// returns the hosted URL.
type Handler struct {
	Uploads shared.FileUploader
	Log     *zap.Logger
}

func NewHandler(uploads shared.FileUploader, logger *zap.Logger) *Handler {
	return &Handler{Uploads: uploads, Log: logger}
}

// Routes mounts POST / (typically at /api/uploads).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Post("/", h.HandleUpload)
	return r
}

type uploadResponse struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// HandleUpload handles POST /api/uploads with a multipart "file".
// 502 means every configured provider failed.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "uploads.create")
	defer cancel()

	f, ok := shared.ReadUpload(w, r, "file")
	if !ok {
		return
	}

	url, err := h.Uploads.Upload(ctx, f)
	if err != nil {
		h.Log.Error("upload failed",
			zap.String("user_id", uid.Hex()),
			zap.String("file", f.Name),
			zap.Error(err))
		respond.Error(w, http.StatusBadGateway, "Upload failed. Please try again later.")
		return
	}

	h.Log.Info("file uploaded", zap.String("user_id", uid.Hex()), zap.String("url", url), zap.Int64("size", f.Size()))
	respond.Created(w, uploadResponse{URL: url, Name: f.Name, ContentType: f.ContentType, Size: f.Size()})
}
