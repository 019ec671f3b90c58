package uploader

import (
	"context"
	"fmt"

	"github.com/videorelay/sora-video-api/internal/cloudinary"
)

// CloudinaryUploader adapts the Cloudinary client to the Uploader interface.
type CloudinaryUploader struct {
	client *cloudinary.Client
}

// NewCloudinaryUploader creates a new Cloudinary-backed uploader.
func NewCloudinaryUploader(client *cloudinary.Client) *CloudinaryUploader {
	return &CloudinaryUploader{client: client}
}

// UploadVideo ingests the video at sourceURL into Cloudinary and returns the
// permanent secure URL.
func (u *CloudinaryUploader) UploadVideo(ctx context.Context, sourceURL string) (string, error) {
	result, err := u.client.UploadVideo(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("cloudinary uploader: %w", err)
	}
	return result.SecureURL, nil
}

// Compile-time check that CloudinaryUploader implements Uploader.
var _ Uploader = (*CloudinaryUploader)(nil)
