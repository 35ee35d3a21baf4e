package domain

import "time"

// ImageUpload records an image stored for use by the portal (campaign art, app icons).
type ImageUpload struct {
	ID         string
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	UploadedBy string
	CreatedAt  time.Time
}
