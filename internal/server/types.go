// Package server provides the HTTP server for the video generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// GenerateVideoRequest is the HTTP request body for POST /generate-video.
type GenerateVideoRequest struct {
	// Prompt is the required generation prompt. Presence is checked by the
	// pipeline so the documented error message is returned verbatim.
	Prompt string `json:"prompt"`
	// DurationSeconds is the requested video length in seconds (default 4).
	DurationSeconds float64 `json:"duration_seconds" validate:"omitempty,gt=0"`
	// AspectRatio is the requested aspect ratio (default "landscape").
	AspectRatio string `json:"aspect_ratio" validate:"omitempty,max=32"`
	// ReferenceImageURL is the deprecated single-image form, superseded by
	// ReferenceImageURLs.
	ReferenceImageURL string `json:"reference_image_url" validate:"omitempty,url"`
	// ReferenceImageURLs is an ordered list of reference image URLs; when
	// non-empty the generation runs in image-to-video mode.
	ReferenceImageURLs []string `json:"reference_image_urls" validate:"omitempty,dive,url"`
}

// referenceImages normalizes the two reference-image shapes into one ordered
// list. The list form supersedes the single-URL form when both are present.
func (r GenerateVideoRequest) referenceImages() []string {
	if len(r.ReferenceImageURLs) > 0 {
		return r.ReferenceImageURLs
	}
	if r.ReferenceImageURL != "" {
		return []string{r.ReferenceImageURL}
	}
	return nil
}

// GenerateVideoResponse is the HTTP response for a completed generation.
type GenerateVideoResponse struct {
	// Status is always "completed" on success.
	Status string `json:"status"`
	// CloudinaryVideoURL is the permanent hosted URL of the video.
	CloudinaryVideoURL string `json:"cloudinary_video_url"`
	// Model is the generation model identifier used.
	Model string `json:"model"`
}

// FailureResponse is the error body for pipeline failures.
type FailureResponse struct {
	// Status is always "failed".
	Status string `json:"status"`
	// Error is the human-readable failure message.
	Error string `json:"error"`
}

// ValidationErrorResponse is the error body for client input errors.
type ValidationErrorResponse struct {
	// Error is the human-readable validation message.
	Error string `json:"error"`
}

// MissingCredentialResponse is the error body when the credential header is absent.
type MissingCredentialResponse struct {
	// Error names the missing header.
	Error string `json:"error"`
	// Message instructs the caller how to supply the credential.
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
