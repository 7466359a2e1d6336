package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/TripShare-io/tripshare/internal/models"
)

// LocalStorage stores images on the local filesystem. Files are served
// statically by the API under /uploads/.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the uploads directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the directory images are written to.
func (ls *LocalStorage) Dir() string { return ls.dir }

// Save writes the upload under a random filename to avoid collisions,
// keeping the original extension.
func (ls *LocalStorage) Save(ctx context.Context, upload Upload) (string, error) {
	filename := uuid.New().String() + filepath.Ext(upload.OriginalName)

	f, err := os.Create(filepath.Join(ls.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, upload.Reader); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return filename, nil
}

// Remove deletes a stored image. The default sentinel is never deleted,
// and a file already gone is not an error.
func (ls *LocalStorage) Remove(ctx context.Context, filename string) error {
	if filename == "" || filename == models.DefaultImage {
		return nil
	}
	err := os.Remove(filepath.Join(ls.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}
