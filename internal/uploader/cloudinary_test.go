package uploader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videorelay/sora-video-api/internal/cloudinary"
)

func newCloudinaryTestUploader(t *testing.T, handler http.HandlerFunc) *CloudinaryUploader {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := cloudinary.NewClient(cloudinary.Config{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		Folder:    "generated-videos",
	}, cloudinary.WithBaseURL(srv.URL))
	require.NoError(t, err)

	return NewCloudinaryUploader(client)
}

func TestCloudinaryUploader_ReturnsSecureURL(t *testing.T) {
	up := newCloudinaryTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/video/upload/v1/x.mp4"}`))
	})

	url, err := up.UploadVideo(context.Background(), "https://cdn.example.com/source.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/v1/x.mp4", url)
}

func TestCloudinaryUploader_PropagatesError(t *testing.T) {
	up := newCloudinaryTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid video source URL"}}`))
	})

	_, err := up.UploadVideo(context.Background(), "https://cdn.example.com/source.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, cloudinary.ErrUploadFailed)
	assert.Contains(t, err.Error(), "Invalid video source URL")
}
