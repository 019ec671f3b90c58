// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrUploadBackendRequired is returned when no upload backend is configured:
// Cloudinary credentials are mandatory unless S3 is fully set up.
var ErrUploadBackendRequired = errors.New(
	"config: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required (or configure S3_BUCKET and S3_REGION)")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Generation settings
	Model           string `env:"GENERATION_MODEL, default=openai/sora-2-pro" json:"model"`
	PollIntervalSec int    `env:"POLL_INTERVAL_SEC, default=5" json:"poll_interval_sec"`

	// Cloudinary settings (primary upload backend)
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME" json:"cloudinary_cloud_name,omitempty"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY" json:"-"`    // Masked in JSON
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET" json:"-"` // Masked in JSON
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER, default=generated-videos" json:"cloudinary_folder"`

	// Upload settings. Video ingestion is slow, so the timeout defaults to
	// ten minutes.
	UploadTimeoutSec int `env:"UPLOAD_TIMEOUT_SEC, default=600" json:"upload_timeout_sec"`

	// Optional S3 settings (alternative upload backend)
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3KeyPrefix        string `env:"S3_KEY_PREFIX, default=generated-videos" json:"s3_key_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// CloudinaryEnabled returns true if Cloudinary configuration is provided.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// UploadTimeout returns the upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSec) * time.Second
}

// PollInterval returns the generation poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if no upload backend is configured.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that at least one upload backend is fully configured.
func (c *Config) Validate() error {
	if !c.CloudinaryEnabled() && !c.S3Enabled() {
		return ErrUploadBackendRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, Model: %s, CloudinaryCloudName: %s, CloudinaryFolder: %s, UploadTimeoutSec: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.Model,
		c.CloudinaryCloudName,
		c.CloudinaryFolder,
		c.UploadTimeoutSec,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
