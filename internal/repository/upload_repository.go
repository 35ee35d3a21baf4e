package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ontimely/admin-portal/internal/domain"
)

// UploadRepository records metadata of stored images.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.ImageUpload) error
}

type uploadRepository struct {
	pool *pgxpool.Pool
}

// NewUploadRepository constructs repository.
func NewUploadRepository(pool *pgxpool.Pool) UploadRepository {
	return &uploadRepository{pool: pool}
}

func (r *uploadRepository) Create(ctx context.Context, upload *domain.ImageUpload) error {
	const query = `
        INSERT INTO image_uploads (file_name, storage_key, mime_type, size_bytes, uploaded_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		upload.FileName,
		upload.StorageKey,
		upload.MimeType,
		upload.SizeBytes,
		upload.UploadedBy,
	).Scan(&upload.ID, &upload.CreatedAt)
}
