// Package replicate provides an HTTP client for the Replicate prediction API,
// used here to run text-to-video and image-to-video generation models.
package replicate

import (
	"encoding/json"
	"fmt"
)

// Status represents the status of a Replicate prediction.
type Status string

// Prediction statuses aligned with the Replicate API.
const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// predictionRequest represents the request body for creating a prediction.
type predictionRequest struct {
	Input any `json:"input"`
}

// Prediction represents a prediction resource returned by the Replicate API.
type Prediction struct {
	ID     string `json:"id"`
	Model  string `json:"model,omitempty"`
	Status Status `json:"status"`
	// Output carries the model result. Its shape is model-specific: a plain
	// URL string, a list of URLs, or an object with a url field.
	Output any `json:"output,omitempty"`
	// Error is a string for most models but the API does not guarantee it.
	Error any `json:"error,omitempty"`

	CreatedAt   string `json:"created_at,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// ErrorMessage returns the prediction error as a string, regardless of the
// shape the API used for it.
func (p *Prediction) ErrorMessage() string {
	switch v := p.Error.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// apiError represents an error payload returned by the Replicate API.
type apiError struct {
	Detail string `json:"detail,omitempty"`
	Title  string `json:"title,omitempty"`
}
