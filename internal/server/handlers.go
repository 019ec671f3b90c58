package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/videorelay/sora-video-api/internal/replicate"
	"github.com/videorelay/sora-video-api/internal/videogen"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   *videogen.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *videogen.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GenerateVideo handles POST /generate-video requests. It blocks until the
// video is generated and re-uploaded, then returns the permanent URL.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	token, ok := GenerationKeyFromContext(r.Context())
	if !ok || token == "" {
		// RequireGenerationKey guards this route; reaching here means the
		// handler was mounted without it.
		writeJSON(w, http.StatusUnauthorized, MissingCredentialResponse{
			Error:   "Missing required header: " + HeaderGenerationKey,
			Message: "Provide your Replicate API key in the " + HeaderGenerationKey + " header.",
		})
		return
	}

	var req GenerateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: err.Error()})
		return
	}

	input := videogen.GenerateInput{
		Prompt:             req.Prompt,
		DurationSeconds:    req.DurationSeconds,
		AspectRatio:        req.AspectRatio,
		ReferenceImageURLs: req.referenceImages(),
	}

	result, err := h.service.Generate(r.Context(), token, input)
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateVideoResponse{
		Status:             "completed",
		CloudinaryVideoURL: result.VideoURL,
		Model:              result.Model,
	})
}

// writeGenerateError maps pipeline errors to HTTP responses: validation
// errors to 400, credential rejections to 401, everything else to 500.
func (h *Handlers) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *videogen.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: vErr.Message})
		return
	}

	requestID, _ := RequestIDFromContext(r.Context())

	status := http.StatusInternalServerError
	if errors.Is(err, replicate.ErrUnauthorized) || errors.Is(err, replicate.ErrTokenRequired) {
		status = http.StatusUnauthorized
	}

	h.logger.Error("generation request failed",
		slog.Int("status", status),
		slog.String("request_id", requestID),
		slog.String("error", err.Error()),
	)

	writeJSON(w, status, FailureResponse{
		Status: "failed",
		Error:  err.Error(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
