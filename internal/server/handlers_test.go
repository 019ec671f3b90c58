package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/videorelay/sora-video-api/internal/replicate"
	"github.com/videorelay/sora-video-api/internal/videogen"
)

// mockGenerationClient implements replicate.Client for testing.
type mockGenerationClient struct {
	mock.Mock
}

func (m *mockGenerationClient) Run(ctx context.Context, model string, input any) (*replicate.Prediction, error) {
	args := m.Called(ctx, model, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*replicate.Prediction), args.Error(1)
}

// mockUploader implements uploader.Uploader for testing.
type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) UploadVideo(ctx context.Context, sourceURL string) (string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	router        http.Handler
	client        *mockGenerationClient
	uploader      *mockUploader
	factoryCalled *bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	client := &mockGenerationClient{}
	up := &mockUploader{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	factoryCalled := false
	factory := func(token string) (replicate.Client, error) {
		factoryCalled = true
		return client, nil
	}

	svc := videogen.NewService(factory, up, logger)
	handlers := NewHandlers(svc, logger)
	router := NewRouter(handlers, logger, DefaultConfig())

	return &testEnv{
		router:        router,
		client:        client,
		uploader:      up,
		factoryCalled: &factoryCalled,
	}
}

func postGenerate(t *testing.T, router http.Handler, apiKey string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(http.MethodPost, "/generate-video", &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(HeaderGenerationKey, apiKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestGenerateVideo_MissingCredentialHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := postGenerate(t, env.router, "", map[string]any{"prompt": "a cat"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Missing required header: "+HeaderGenerationKey, body["error"])
	assert.Contains(t, body["message"], HeaderGenerationKey)

	// Neither provider may be contacted.
	assert.False(t, *env.factoryCalled)
	env.uploader.AssertNotCalled(t, "UploadVideo", mock.Anything, mock.Anything)
}

func TestGenerateVideo_MissingPrompt(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{},
		{"prompt": ""},
	} {
		rec := postGenerate(t, env.router, "r8_token", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required parameter: prompt", decodeBody(t, rec)["error"])
	}

	assert.False(t, *env.factoryCalled)
	env.uploader.AssertNotCalled(t, "UploadVideo", mock.Anything, mock.Anything)
}

func TestGenerateVideo_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := postGenerate(t, env.router, "r8_token", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decodeBody(t, rec)["error"])
}

func TestGenerateVideo_InvalidReferenceURL(t *testing.T) {
	env := newTestEnv(t)

	rec := postGenerate(t, env.router, "r8_token", map[string]any{
		"prompt":              "a cat",
		"reference_image_url": "not-a-url",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, *env.factoryCalled)
}

func TestGenerateVideo_Success(t *testing.T) {
	env := newTestEnv(t)

	env.client.On("Run", mock.Anything, "openai/sora-2-pro", mock.MatchedBy(func(in any) bool {
		pi, ok := in.(videogen.ProviderInput)
		return ok && pi.Prompt == "a cat" && pi.Seconds == 4 &&
			pi.AspectRatio == "landscape" && pi.Resolution == "high" &&
			pi.InputReference == nil
	})).Return(&replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "https://cdn.example.com/out.mp4",
	}, nil)

	env.uploader.On("UploadVideo", mock.Anything, "https://cdn.example.com/out.mp4").
		Return("https://res.cloudinary.com/demo/video/upload/v1/out.mp4", nil)

	rec := postGenerate(t, env.router, "r8_token", map[string]any{"prompt": "a cat"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/v1/out.mp4", body["cloudinary_video_url"])
	assert.Equal(t, "openai/sora-2-pro", body["model"])

	env.client.AssertExpectations(t)
	env.uploader.AssertExpectations(t)
}

func TestGenerateVideo_SingleReferenceURLNormalizedToList(t *testing.T) {
	env := newTestEnv(t)

	env.client.On("Run", mock.Anything, mock.Anything, mock.MatchedBy(func(in any) bool {
		pi, ok := in.(videogen.ProviderInput)
		return ok && len(pi.InputReference) == 1 &&
			pi.InputReference[0] == "https://img.example.com/ref.png"
	})).Return(&replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "https://cdn.example.com/out.mp4",
	}, nil)
	env.uploader.On("UploadVideo", mock.Anything, mock.Anything).
		Return("https://hosted.example.com/out.mp4", nil)

	rec := postGenerate(t, env.router, "r8_token", map[string]any{
		"prompt":              "a cat",
		"reference_image_url": "https://img.example.com/ref.png",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	env.client.AssertExpectations(t)
}

func TestGenerateVideo_ReferenceListSupersedesSingleURL(t *testing.T) {
	env := newTestEnv(t)

	refs := []string{"https://img.example.com/1.png", "https://img.example.com/2.png"}

	env.client.On("Run", mock.Anything, mock.Anything, mock.MatchedBy(func(in any) bool {
		pi, ok := in.(videogen.ProviderInput)
		return ok && len(pi.InputReference) == 2 &&
			pi.InputReference[0] == refs[0] && pi.InputReference[1] == refs[1]
	})).Return(&replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "https://cdn.example.com/out.mp4",
	}, nil)
	env.uploader.On("UploadVideo", mock.Anything, mock.Anything).
		Return("https://hosted.example.com/out.mp4", nil)

	rec := postGenerate(t, env.router, "r8_token", map[string]any{
		"prompt":               "a cat",
		"reference_image_url":  "https://img.example.com/ignored.png",
		"reference_image_urls": refs,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	env.client.AssertExpectations(t)
}

func TestGenerateVideo_ProviderAuthFailure(t *testing.T) {
	env := newTestEnv(t)

	env.client.On("Run", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, replicate.ErrUnauthorized)

	rec := postGenerate(t, env.router, "bad-token", map[string]any{"prompt": "a cat"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestGenerateVideo_ProviderAuthMessageFailure(t *testing.T) {
	env := newTestEnv(t)

	// A failed prediction whose message carries "401" is classified as an
	// auth rejection by the adapter.
	env.client.On("Run", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: Replicate API error: 401 Client Error", replicate.ErrUnauthorized))

	rec := postGenerate(t, env.router, "bad-token", map[string]any{"prompt": "a cat"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Contains(t, body["error"], "401")
}

func TestGenerateVideo_GenericFailure(t *testing.T) {
	env := newTestEnv(t)

	env.client.On("Run", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))

	rec := postGenerate(t, env.router, "r8_token", map[string]any{"prompt": "a cat"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Contains(t, body["error"], "quota exceeded")
}

func TestGenerateVideo_UploadFailure(t *testing.T) {
	env := newTestEnv(t)

	env.client.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "https://cdn.example.com/out.mp4",
	}, nil)
	env.uploader.On("UploadVideo", mock.Anything, mock.Anything).
		Return("", errors.New("ingest timed out"))

	rec := postGenerate(t, env.router, "r8_token", map[string]any{"prompt": "a cat"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])

	// The already-generated URL is not leaked as a fallback.
	assert.NotContains(t, rec.Body.String(), "cloudinary_video_url")
}
