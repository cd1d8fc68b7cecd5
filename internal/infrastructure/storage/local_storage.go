package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*LocalStorage)(nil)

// LocalStorage writes images below a directory that the HTTP server exposes
// under a public prefix (by default /uploads).
type LocalStorage struct {
	dir       string
	publicURL string
}

// NewLocalStorage creates the upload directory if needed
func NewLocalStorage(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir returns the directory served as static files
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes the upload to <dir>/<folder>/<uuid><ext>
func (s *LocalStorage) Save(ctx context.Context, folder string, upload catalogapp.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	name := uuid.NewString() + upload.Extension()
	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.publicURL + "/" + folder + "/" + name, nil
}

// Delete removes the file behind url. Unknown or already removed files are ignored.
func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || rel == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
