package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newUploadServiceForTest(maxBytes int64) (*UploadService, *memoryStorage, *fakeUploadRepo) {
	storage := &memoryStorage{}
	repo := &fakeUploadRepo{}
	svc := NewUploadService(config.UploadsConfig{MaxBytes: maxBytes, PublicPrefix: "/media"}, repo, storage, nil)
	return svc, storage, repo
}

func TestUploadSavesImage(t *testing.T) {
	svc, storage, repo := newUploadServiceForTest(1024)
	actor := &domain.StaffMember{ID: "s1"}

	stored, err := svc.Save(context.Background(), actor, "../../etc/logo.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.Upload.MimeType)
	assert.Equal(t, "logo.png", stored.Upload.FileName)
	assert.Equal(t, "s1", stored.Upload.UploadedBy)
	assert.True(t, strings.HasSuffix(stored.Upload.StorageKey, ".png"))
	assert.Equal(t, "/media/"+stored.Upload.StorageKey, stored.URL)
	assert.Contains(t, storage.objects, stored.Upload.StorageKey)
	assert.Len(t, repo.created, 1)
}

func TestUploadRejectsNonImages(t *testing.T) {
	svc, storage, _ := newUploadServiceForTest(1024)

	_, err := svc.Save(context.Background(), nil, "notes.png", strings.NewReader("just some text"))
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 415, domainErr.HTTPStatus)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", domainErr.Code)
	assert.Empty(t, storage.objects)
}

func TestUploadLimits(t *testing.T) {
	svc, _, _ := newUploadServiceForTest(int64(len(pngHeader) - 1))

	_, err := svc.Save(context.Background(), nil, "big.png", bytes.NewReader(pngHeader))
	assert.Equal(t, 413, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.Save(context.Background(), nil, "empty.png", bytes.NewReader(nil))
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUploadRemovesFileWhenMetadataInsertFails(t *testing.T) {
	svc, storage, repo := newUploadServiceForTest(1024)
	repo.createErr = errors.New("connection reset")

	_, err := svc.Save(context.Background(), nil, "logo.png", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.Empty(t, storage.objects)
	assert.Empty(t, repo.created)
}

func TestDiskStorageWritesAndDeletesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	storage := DiskStorage{Dir: dir}
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, "a.png", pngHeader))
	assert.FileExists(t, filepath.Join(dir, "a.png"))

	require.NoError(t, storage.Delete(ctx, "a.png"))
	_, err := os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, storage.Delete(ctx, "a.png"))
}
