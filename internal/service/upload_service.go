package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/repository"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStorage persists uploaded bytes under a key.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// DiskStorage writes images below a directory.
type DiskStorage struct {
	Dir string
}

// Put writes data to Dir/key.
func (d DiskStorage) Put(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return os.WriteFile(filepath.Join(d.Dir, key), data, 0o644)
}

// Delete removes Dir/key. A missing file is not an error.
func (d DiskStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(d.Dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// UploadService validates and stores portal images.
type UploadService struct {
	uploads      repository.UploadRepository
	storage      ImageStorage
	maxBytes     int64
	publicPrefix string
	logger       *zap.Logger
}

// StoredImage is the result of a successful upload.
type StoredImage struct {
	Upload *domain.ImageUpload
	URL    string
}

// NewUploadService constructs the service.
func NewUploadService(cfg config.UploadsConfig, uploads repository.UploadRepository, storage ImageStorage, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		uploads:      uploads,
		storage:      storage,
		maxBytes:     cfg.MaxBytes,
		publicPrefix: cfg.PublicPrefix,
		logger:       logger,
	}
}

// MaxBytes is the largest accepted image.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Save sniffs the content type of r, stores it under a random name and records
// its metadata. The client-supplied name is kept for display only.
func (s *UploadService) Save(ctx context.Context, actor *domain.StaffMember, fileName string, r io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewValidationError("unable to read upload", nil)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("file is empty", nil)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewPayloadTooLarge(fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}

	mimeType := http.DetectContentType(data)
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return nil, apperrors.NewDomainError("UNSUPPORTED_MEDIA_TYPE", "only jpeg, png, gif and webp images are accepted",
			http.StatusUnsupportedMediaType, map[string]any{"detected": mimeType})
	}

	key := uuid.NewString() + ext
	if err := s.storage.Put(ctx, key, data); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	upload := &domain.ImageUpload{
		FileName:   filepath.Base(fileName),
		StorageKey: key,
		MimeType:   mimeType,
		SizeBytes:  int64(len(data)),
		UploadedBy: actorID(actor),
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("image uploaded",
		zap.String("upload_id", upload.ID),
		zap.String("mime_type", mimeType),
		zap.Int64("size", upload.SizeBytes))
	return &StoredImage{Upload: upload, URL: path.Join(s.publicPrefix, key)}, nil
}
