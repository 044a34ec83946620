package shared

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/mediaupload"
	"github.com/dalemusser/learnhub/internal/app/system/respond"
)

// MaxUploadBytes caps multipart uploads.
const MaxUploadBytes = limits.MaxUploadFile

// FileUploader stores a file and returns its public URL. *mediaupload.Chain
// satisfies it.
type FileUploader interface {
	Upload(ctx context.Context, f mediaupload.File) (string, error)
}

// ReadUpload reads the multipart field into memory. On failure it writes
// 400 (or 413 for oversize bodies) and returns false.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string) (mediaupload.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+limits.MultipartOverhead)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "File is too large.")
			return mediaupload.File{}, false
		}
		respond.BadRequest(w, "Expected a multipart form upload.")
		return mediaupload.File{}, false
	}

	file, hdr, err := r.FormFile(field)
	if err != nil {
		respond.BadRequest(w, "Missing file field \""+field+"\".")
		return mediaupload.File{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		respond.BadRequest(w, "Could not read the uploaded file.")
		return mediaupload.File{}, false
	}
	if len(data) == 0 {
		respond.BadRequest(w, "The uploaded file is empty.")
		return mediaupload.File{}, false
	}
	if len(data) > MaxUploadBytes {
		respond.Error(w, http.StatusRequestEntityTooLarge, "File is too large.")
		return mediaupload.File{}, false
	}

	ct := strings.TrimSpace(hdr.Header.Get("Content-Type"))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return mediaupload.File{Name: hdr.Filename, ContentType: ct, Data: data}, true
}
