package uploader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testS3Config() S3Config {
	return S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		KeyPrefix:       "generated-videos",
		Endpoint:        "http://localhost:4566", // LocalStack-like endpoint
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}
}

func TestNewS3Uploader(t *testing.T) {
	up, err := NewS3Uploader(testS3Config())
	require.NoError(t, err)

	assert.Equal(t, "test-bucket", up.bucket)
	assert.Equal(t, "us-east-1", up.region)
	assert.Equal(t, "generated-videos", up.keyPrefix)
	assert.NotNil(t, up.httpClient)
}

func TestNewS3Uploader_Validation(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		cfg := testS3Config()
		cfg.Bucket = ""
		_, err := NewS3Uploader(cfg)
		assert.ErrorIs(t, err, ErrBucketRequired)
	})

	t.Run("missing region", func(t *testing.T) {
		cfg := testS3Config()
		cfg.Region = ""
		_, err := NewS3Uploader(cfg)
		assert.ErrorIs(t, err, ErrRegionRequired)
	})
}

func TestS3Uploader_ObjectKey(t *testing.T) {
	up, err := NewS3Uploader(testS3Config())
	require.NoError(t, err)

	key := up.objectKey()
	assert.True(t, strings.HasPrefix(key, "generated-videos/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))

	// Keys must be unique per upload.
	assert.NotEqual(t, key, up.objectKey())
}

func TestS3Uploader_ObjectKey_NoPrefix(t *testing.T) {
	cfg := testS3Config()
	cfg.KeyPrefix = ""
	up, err := NewS3Uploader(cfg)
	require.NoError(t, err)

	key := up.objectKey()
	assert.False(t, strings.Contains(key, "/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
}

func TestS3Uploader_ObjectURL(t *testing.T) {
	up, err := NewS3Uploader(testS3Config())
	require.NoError(t, err)

	url := up.objectURL("generated-videos/abc.mp4")
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/generated-videos/abc.mp4", url)
}
