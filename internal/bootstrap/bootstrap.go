// Package bootstrap provides dependency initialization for the video generation API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/videorelay/sora-video-api/internal/cloudinary"
	"github.com/videorelay/sora-video-api/internal/config"
	"github.com/videorelay/sora-video-api/internal/replicate"
	"github.com/videorelay/sora-video-api/internal/uploader"
	"github.com/videorelay/sora-video-api/internal/videogen"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	VideoService *videogen.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	up, err := initUploader(cfg, logger)
	if err != nil {
		return nil, err
	}

	// The generation client is built per request around the caller's
	// credential; only its settings come from the static config.
	newClient := func(token string) (replicate.Client, error) {
		return replicate.NewClient(token,
			replicate.WithPollInterval(cfg.PollInterval()),
		)
	}

	svc := videogen.NewService(newClient, up, logger,
		videogen.WithModel(cfg.Model),
	)

	return &Dependencies{
		VideoService: svc,
	}, nil
}

// initUploader creates the appropriate upload backend based on configuration.
func initUploader(cfg *config.Config, logger *slog.Logger) (uploader.Uploader, error) {
	if cfg.S3Enabled() {
		s3Up, err := uploader.NewS3Uploader(uploader.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			KeyPrefix:       cfg.S3KeyPrefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 uploader: %w", err)
		}
		logger.Info("S3 upload backend configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Up, nil
	}

	client, err := cloudinary.NewClient(cloudinary.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	}, cloudinary.WithUploadTimeout(cfg.UploadTimeout()))
	if err != nil {
		return nil, fmt.Errorf("create Cloudinary client: %w", err)
	}
	logger.Info("Cloudinary upload backend configured",
		slog.String("cloud_name", cfg.CloudinaryCloudName),
		slog.String("folder", cfg.CloudinaryFolder),
	)
	return uploader.NewCloudinaryUploader(client), nil
}
