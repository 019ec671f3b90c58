// Package cloudinary provides an HTTP client for the Cloudinary upload API,
// used to ingest remote video URLs and return permanent hosted URLs.
package cloudinary

// UploadResult represents the relevant fields of a Cloudinary upload response.
type UploadResult struct {
	// PublicID is the Cloudinary-assigned identifier of the asset.
	PublicID string `json:"public_id"`
	// SecureURL is the permanent HTTPS URL of the hosted asset.
	SecureURL string `json:"secure_url"`
	// URL is the plain HTTP variant of the hosted URL.
	URL string `json:"url"`
	// Format is the delivered media format (e.g. "mp4").
	Format string `json:"format,omitempty"`
	// Duration is the video duration in seconds, when known.
	Duration float64 `json:"duration,omitempty"`
	// Bytes is the stored asset size.
	Bytes int64 `json:"bytes,omitempty"`
}

// uploadErrorResponse represents an error payload from the upload API.
type uploadErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
