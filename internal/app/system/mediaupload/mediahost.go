package mediaupload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MediaHostConfig points at a hosted media API that accepts unsigned
// uploads with an upload preset.
type MediaHostConfig struct {
	BaseURL      string // e.g. https://api.cloudinary.com/v1_1
	CloudName    string
	UploadPreset string
}

// Enabled reports whether enough is set to attempt uploads.
func (c MediaHostConfig) Enabled() bool {
	return c.BaseURL != "" && c.CloudName != "" && c.UploadPreset != ""
}

// MediaHost uploads to the hosted media API.
type MediaHost struct {
	cfg    MediaHostConfig
	client *http.Client
}

// NewMediaHost returns a MediaHost. A nil client uses http.DefaultClient;
// deadlines come from the request context.
func NewMediaHost(cfg MediaHostConfig, client *http.Client) *MediaHost {
	if client == nil {
		client = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &MediaHost{cfg: cfg, client: client}
}

func (m *MediaHost) Name() string { return "mediahost" }

// ResourceType is "image" for image/* content and "raw" otherwise.
func ResourceType(f File) string {
	if f.IsImage() {
		return "image"
	}
	return "raw"
}

type mediaHostResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (m *MediaHost) Upload(ctx context.Context, f File) (string, error) {
	if !m.cfg.Enabled() {
		return "", errors.New("media host not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", SanitizeFilename(f.Name))
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.WriteField("upload_preset", m.cfg.UploadPreset); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", m.cfg.BaseURL, m.cfg.CloudName, ResourceType(f))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out mediaHostResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("media host status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("media host status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", errors.New("media host response has no url")
}
