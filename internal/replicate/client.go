package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Static errors for Replicate client operations.
var (
	// ErrTokenRequired is returned when no API token is provided.
	ErrTokenRequired = errors.New("replicate: API token is required")
	// ErrModelRequired is returned when the model identifier is not provided.
	ErrModelRequired = errors.New("replicate: model identifier is required")
	// ErrPredictionIDRequired is returned when the prediction ID is not provided.
	ErrPredictionIDRequired = errors.New("replicate: prediction ID is required")
	// ErrNoPredictionID is returned when the create response contains no prediction ID.
	ErrNoPredictionID = errors.New("replicate: create failed: no prediction ID returned")
	// ErrUnauthorized is returned when the provider rejects the caller's credential.
	ErrUnauthorized = errors.New("replicate: unauthorized")
	// ErrPredictionFailed is returned when a prediction reaches the failed state.
	ErrPredictionFailed = errors.New("replicate: prediction failed")
	// ErrPredictionCanceled is returned when a prediction is canceled upstream.
	ErrPredictionCanceled = errors.New("replicate: prediction canceled")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("replicate: request failed")
)

// Client defines the interface for running generation models on Replicate.
type Client interface {
	// Run creates a prediction for the given model and blocks until it
	// reaches a terminal state, returning the succeeded prediction.
	Run(ctx context.Context, model string, input any) (*Prediction, error)
}

// HTTPClient is the HTTP implementation of the Replicate Client interface.
// A client is scoped to a single caller credential; construct one per request.
type HTTPClient struct {
	token        string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Replicate API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithPollInterval sets the interval between status polls while waiting for
// a prediction to finish.
func WithPollInterval(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.pollInterval = d
	}
}

// NewClient creates a new Replicate HTTP client scoped to the given token.
func NewClient(token string, opts ...ClientOption) (*HTTPClient, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	c := &HTTPClient{
		token:   token,
		baseURL: "https://api.replicate.com/v1",
		// Timeout applies to individual API calls, not the overall wait.
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreatePrediction submits a prediction for the given model (owner/name form)
// and returns it in its initial state.
func (c *HTTPClient) CreatePrediction(ctx context.Context, model string, input any) (*Prediction, error) {
	if model == "" {
		return nil, ErrModelRequired
	}

	bodyBytes, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("replicate: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)

	var pred Prediction
	if err := c.doRequest(ctx, http.MethodPost, url, bodyBytes, &pred); err != nil {
		return nil, err
	}

	if pred.ID == "" {
		return nil, ErrNoPredictionID
	}

	return &pred, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *HTTPClient) GetPrediction(ctx context.Context, predictionID string) (*Prediction, error) {
	if predictionID == "" {
		return nil, ErrPredictionIDRequired
	}

	url := fmt.Sprintf("%s/predictions/%s", c.baseURL, predictionID)

	var pred Prediction
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &pred); err != nil {
		return nil, err
	}

	return &pred, nil
}

// Run creates a prediction and blocks until it reaches a terminal state.
// Generation can take minutes; the wait is bounded only by ctx. No retries
// are attempted: a failed prediction must be resubmitted by the caller.
func (c *HTTPClient) Run(ctx context.Context, model string, input any) (*Prediction, error) {
	pred, err := c.CreatePrediction(ctx, model, input)
	if err != nil {
		return nil, err
	}

	for !pred.Status.IsTerminal() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("replicate: wait for prediction %s: %w", pred.ID, ctx.Err())
		case <-time.After(c.pollInterval):
		}

		pred, err = c.GetPrediction(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
	}

	switch pred.Status {
	case StatusSucceeded:
		return pred, nil
	case StatusCanceled:
		return nil, fmt.Errorf("%w: prediction %s", ErrPredictionCanceled, pred.ID)
	default:
		msg := pred.ErrorMessage()
		if msg == "" {
			msg = "no error detail provided"
		}
		// Some models surface credential rejections only inside the failure
		// message rather than as an HTTP status.
		if strings.Contains(msg, "401") {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrPredictionFailed, msg)
	}
}

// doRequest performs a single HTTP request against the Replicate API.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("replicate: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replicate: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("replicate: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: status %d: %s", ErrUnauthorized, resp.StatusCode, errorDetail(respBody))
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, errorDetail(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("replicate: unmarshal response: %w", err)
		}
	}

	return nil
}

// errorDetail extracts the detail field from an API error payload, falling
// back to the raw body.
func errorDetail(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return string(body)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
