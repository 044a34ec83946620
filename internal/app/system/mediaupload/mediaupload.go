// Package mediaupload stores user media (thumbnails, avatars, course
// resources) on an external host, falling back to object storage when the
// primary host fails.
package mediaupload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrNoUploaders is returned by a Chain with nothing configured.
var ErrNoUploaders = errors.New("mediaupload: no uploaders configured")

// File is an upload held in memory so each uploader can read it from the
// start.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the byte length of the file.
func (f File) Size() int64 { return int64(len(f.Data)) }

// IsImage reports whether the content type is image/*.
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.ContentType), "image/")
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, f File) (string, error)
}

// Outcome values passed to a Chain's observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Chain tries its uploaders in order and returns the first URL produced.
// Each uploader is called at most once per Upload.
type Chain struct {
	uploaders []Uploader
	log       *zap.Logger
	observe   func(provider, outcome string)
}

// Option configures a Chain.
type Option func(*Chain)

// WithObserver registers a callback invoked after every attempt.
func WithObserver(fn func(provider, outcome string)) Option {
	return func(c *Chain) { c.observe = fn }
}

// NewChain builds a Chain. Nil uploaders are skipped.
func NewChain(log *zap.Logger, uploaders []Uploader, opts ...Option) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chain{log: log}
	for _, u := range uploaders {
		if u != nil {
			c.uploaders = append(c.uploaders, u)
		}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Providers lists the uploader names in try order.
func (c *Chain) Providers() []string {
	out := make([]string, 0, len(c.uploaders))
	for _, u := range c.uploaders {
		out = append(out, u.Name())
	}
	return out
}

// Upload stores f with the first uploader that succeeds. When every
// uploader fails the errors are joined.
func (c *Chain) Upload(ctx context.Context, f File) (string, error) {
	if len(c.uploaders) == 0 {
		return "", ErrNoUploaders
	}

	var errs []error
	for _, u := range c.uploaders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		url, err := u.Upload(ctx, f)
		if err == nil {
			c.record(u.Name(), OutcomeSuccess)
			if len(errs) > 0 {
				c.log.Info("upload served by fallback",
					zap.String("provider", u.Name()),
					zap.String("file", f.Name))
			}
			return url, nil
		}
		c.record(u.Name(), OutcomeFailure)
		c.log.Warn("upload failed",
			zap.String("provider", u.Name()),
			zap.String("file", f.Name),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", u.Name(), err))
	}
	return "", errors.Join(errs...)
}

func (c *Chain) record(provider, outcome string) {
	if c.observe != nil {
		c.observe(provider, outcome)
	}
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping a
// short extension.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}

	b := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if allowedFilenameChar(ch) {
			b = append(b, ch)
		} else {
			b = append(b, '_')
		}
	}
	if len(b) == 0 {
		return "file"
	}
	if len(b) > 100 {
		ext := filepath.Ext(string(b))
		if len(ext) > 0 && len(ext) < 10 {
			b = append(b[:100-len(ext)], ext...)
		} else {
			b = b[:100]
		}
	}
	return string(b)
}

func allowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
