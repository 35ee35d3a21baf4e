package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ontimely/admin-portal/internal/domain"
)

const sessionFileName = "session.json"

// FileStore keeps the record in a file private to the current OS user.
type FileStore struct {
	path string
}

// NewFileStore stores the record at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns <user config dir>/<app>/session.json.
func DefaultFilePath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, app, sessionFileName), nil
}

func (f *FileStore) Read(_ context.Context) (*domain.SessionRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return decodeRecord(data)
}

func (f *FileStore) Write(_ context.Context, email, token string) error {
	data, err := encodeRecord(email, token)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
