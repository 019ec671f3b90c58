package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Static errors for Cloudinary client operations.
var (
	// ErrCloudNameRequired is returned when the cloud name is not provided.
	ErrCloudNameRequired = errors.New("cloudinary: cloud name is required")
	// ErrCredentialsRequired is returned when the API key or secret is missing.
	ErrCredentialsRequired = errors.New("cloudinary: API key and secret are required")
	// ErrSourceURLRequired is returned when no source URL is provided.
	ErrSourceURLRequired = errors.New("cloudinary: source URL is required")
	// ErrUploadFailed is returned when the upload API rejects the request.
	ErrUploadFailed = errors.New("cloudinary: upload failed")
	// ErrNoSecureURL is returned when the upload response carries no secure URL.
	ErrNoSecureURL = errors.New("cloudinary: upload response contains no secure URL")
)

// Config holds the process-wide Cloudinary credentials and upload settings.
// It is read once at startup and immutable afterwards.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	// Folder is the logical folder assets are uploaded into.
	Folder string
}

// Client uploads remote media into a Cloudinary account.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the upload API.
func WithBaseURL(u string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithUploadTimeout sets the upload timeout. Video ingestion involves
// fetching and transcoding on the provider side, so the default is long.
func WithUploadTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a new Cloudinary upload client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, ErrCloudNameRequired
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrCredentialsRequired
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    "https://api.cloudinary.com",
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// UploadVideo instructs Cloudinary to fetch sourceURL and ingest it as a
// video resource, returning the upload result with the permanent URL.
// No retry is attempted on failure.
func (c *Client) UploadVideo(ctx context.Context, sourceURL string) (UploadResult, error) {
	if sourceURL == "" {
		return UploadResult{}, ErrSourceURLRequired
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	// The signature covers every parameter except file and api_key.
	signed := map[string]string{
		"timestamp": timestamp,
	}
	if c.cfg.Folder != "" {
		signed["folder"] = c.cfg.Folder
	}

	form := url.Values{}
	form.Set("file", sourceURL)
	form.Set("api_key", c.cfg.APIKey)
	form.Set("timestamp", timestamp)
	form.Set("signature", requestSignature(signed, c.cfg.APISecret))
	if c.cfg.Folder != "" {
		form.Set("folder", c.cfg.Folder)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/video/upload", c.baseURL, c.cfg.CloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary: upload request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadResult{}, fmt.Errorf("%w with status %d: %s", ErrUploadFailed, resp.StatusCode, uploadErrorMessage(respBody))
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary: unmarshal response: %w", err)
	}

	if result.SecureURL == "" {
		return UploadResult{}, ErrNoSecureURL
	}

	return result, nil
}

// requestSignature computes the SHA-1 request signature over the signed
// parameters, sorted by key, with the API secret appended.
func requestSignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// uploadErrorMessage extracts the error message from an upload API error
// payload, falling back to the raw body.
func uploadErrorMessage(body []byte) string {
	var apiErr uploadErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return string(body)
}
