package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Static errors for the S3 uploader.
var (
	// ErrBucketRequired is returned when the bucket is not provided.
	ErrBucketRequired = errors.New("uploader: S3 bucket is required")
	// ErrRegionRequired is returned when the region is not provided.
	ErrRegionRequired = errors.New("uploader: S3 region is required")
	// ErrSourceFetchFailed is returned when the source video cannot be downloaded.
	ErrSourceFetchFailed = errors.New("uploader: fetch source video failed")
)

// S3Config holds the configuration for the S3 upload backend.
type S3Config struct {
	Bucket          string
	Region          string
	KeyPrefix       string // Optional: logical folder for uploaded videos
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// S3Uploader ingests a remote video URL by downloading it and putting the
// object into an S3 bucket. It is the alternative to the Cloudinary backend.
type S3Uploader struct {
	client     *s3.Client
	httpClient *http.Client
	bucket     string
	region     string
	keyPrefix  string
}

// S3Option is a function that configures an S3Uploader.
type S3Option func(*S3Uploader)

// WithDownloadClient sets the HTTP client used to fetch the source video.
// Generated videos can be large; the default timeout is ten minutes.
func WithDownloadClient(c *http.Client) S3Option {
	return func(u *S3Uploader) {
		u.httpClient = c
	}
}

// NewS3Uploader creates a new S3-backed uploader.
func NewS3Uploader(cfg S3Config, opts ...S3Option) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	if cfg.Region == "" {
		return nil, ErrRegionRequired
	}

	var configOpts []func(*awsconfig.LoadOptions) error
	configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	u := &S3Uploader{
		client:     s3.NewFromConfig(awsCfg, clientOpts...),
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		keyPrefix:  cfg.KeyPrefix,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u, nil
}

// UploadVideo downloads the video at sourceURL and uploads it to S3,
// returning the public object URL.
func (u *S3Uploader) UploadVideo(ctx context.Context, sourceURL string) (string, error) {
	if sourceURL == "" {
		return "", fmt.Errorf("%w: empty source URL", ErrSourceFetchFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("uploader: create download request: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrSourceFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrSourceFetchFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := u.objectKey()
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploader: upload to S3: %w", err)
	}

	return u.objectURL(key), nil
}

// objectKey builds a unique object key under the configured prefix.
func (u *S3Uploader) objectKey() string {
	return path.Join(u.keyPrefix, uuid.NewString()+".mp4")
}

// objectURL returns the public URL for an object key.
func (u *S3Uploader) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

// Compile-time check that S3Uploader implements Uploader.
var _ Uploader = (*S3Uploader)(nil)
