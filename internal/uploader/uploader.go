// Package uploader provides the media-host port and its backends.
// It defines the Uploader interface for ingesting a remote video URL into
// permanent hosting, with Cloudinary and S3 implementations.
package uploader

import "context"

// Uploader defines the interface for re-uploading a generated video into
// permanent media hosting.
type Uploader interface {
	// UploadVideo ingests the video at sourceURL and returns its permanent
	// hosted URL.
	UploadVideo(ctx context.Context, sourceURL string) (string, error)
}
