// Package videogen provides the video generation pipeline: input
// normalization, provider submission, output coercion and re-upload.
package videogen

import "strings"

// Defaults applied to omitted optional fields.
const (
	// DefaultDurationSeconds is the generation length when none is requested.
	DefaultDurationSeconds = 4
	// DefaultAspectRatio is used when the caller does not specify one.
	DefaultAspectRatio = "landscape"
	// Resolution is fixed and not caller-configurable.
	Resolution = "high"
)

// ValidationError describes a client input error. It is reported with a 400
// status before any external call is made.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// errMissingPrompt carries the exact message the API contract documents.
func errMissingPrompt() *ValidationError {
	return &ValidationError{Field: "prompt", Message: "Missing required parameter: prompt"}
}

// GenerateInput is the normalized caller request for one generation.
type GenerateInput struct {
	// Prompt is the required generation prompt.
	Prompt string
	// DurationSeconds is the requested video length; 0 means use the default.
	DurationSeconds float64
	// AspectRatio is the requested aspect ratio; empty means the default.
	AspectRatio string
	// ReferenceImageURLs switches the model from text-to-video to
	// image-to-video when non-empty. Order is preserved.
	ReferenceImageURLs []string
}

// ProviderInput is the generation provider's expected input shape.
type ProviderInput struct {
	Prompt      string  `json:"prompt"`
	Seconds     float64 `json:"seconds"`
	AspectRatio string  `json:"aspect_ratio"`
	Resolution  string  `json:"resolution"`
	// InputReference must be omitted entirely when no reference images are
	// supplied: the provider distinguishes T2V from I2V by the field's
	// presence, not by an empty value.
	InputReference []string `json:"input_reference,omitempty"`
}

// NormalizeInput validates a GenerateInput and applies defaults, producing
// the provider input. It returns a ValidationError before any network call
// when the input is unusable.
func NormalizeInput(in GenerateInput) (ProviderInput, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return ProviderInput{}, errMissingPrompt()
	}

	if in.DurationSeconds < 0 {
		return ProviderInput{}, &ValidationError{
			Field:   "duration_seconds",
			Message: "duration_seconds must be a positive number",
		}
	}

	seconds := in.DurationSeconds
	if seconds == 0 {
		seconds = DefaultDurationSeconds
	}

	aspectRatio := strings.TrimSpace(in.AspectRatio)
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}

	out := ProviderInput{
		Prompt:      prompt,
		Seconds:     seconds,
		AspectRatio: aspectRatio,
		Resolution:  Resolution,
	}

	if len(in.ReferenceImageURLs) > 0 {
		refs := make([]string, len(in.ReferenceImageURLs))
		copy(refs, in.ReferenceImageURLs)
		out.InputReference = refs
	}

	return out, nil
}
