package mediaupload

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.key, f.contentType = bucket, key, opts.ContentType
	f.body, _ = io.ReadAll(r)
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

var keyPattern = regexp.MustCompile(`^uploads/2025/03/[0-9a-f]{8}-x\.png$`)

func TestObjectStore_Upload(t *testing.T) {
	fp := &fakePutter{}
	s := newObjectStore(fp, "media", "https://store/")
	s.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }

	url, err := s.Upload(context.Background(), File{Name: "x.png", ContentType: "image/png", Data: []byte("png")})

	require.NoError(t, err)
	assert.Equal(t, "media", fp.bucket)
	assert.Regexp(t, keyPattern, fp.key)
	assert.Equal(t, "image/png", fp.contentType)
	assert.Equal(t, []byte("png"), fp.body)
	assert.Equal(t, "https://store/media/"+fp.key, url)
}

func TestObjectStore_DefaultContentType(t *testing.T) {
	fp := &fakePutter{}
	s := newObjectStore(fp, "media", "http://localhost:9000")

	_, err := s.Upload(context.Background(), File{Name: "notes", Data: []byte("n")})

	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", fp.contentType)
}

func TestObjectStore_PutError(t *testing.T) {
	boom := errors.New("access denied")
	s := newObjectStore(&fakePutter{err: boom}, "media", "http://localhost:9000")

	_, err := s.Upload(context.Background(), File{Name: "x.png", Data: []byte("x")})

	assert.ErrorIs(t, err, boom)
}

func TestObjectKey_UsesUTCMonth(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2025-04-01 05:00 local is still March in UTC
	key := ObjectKey("x.png", time.Date(2025, 4, 1, 5, 0, 0, 0, loc))
	assert.Regexp(t, keyPattern, key)
}
