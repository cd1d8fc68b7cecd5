package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Image folders used as storage key prefixes
const (
	FolderCategories    = "categories"
	FolderSubcategories = "subcategories"
	FolderProducts      = "products"
)

// allowedImageTypes maps accepted content types to file extensions
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// ImageUpload is one uploaded image file
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Extension returns the lowercased file extension
func (u ImageUpload) Extension() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// ImageStorage stores catalog images and returns their public URL.
// Implementations: local directory served under /uploads, or S3.
type ImageStorage interface {
	Save(ctx context.Context, folder string, upload ImageUpload) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadLimits bounds image uploads
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

// DefaultUploadLimits allows five files of 5MB each
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxFileSize: 5 << 20, MaxFiles: 5}
}

// ValidateImageUploads checks count, size and type of every upload
func ValidateImageUploads(uploads []ImageUpload, limits UploadLimits) error {
	if len(uploads) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "No image uploaded")
	}
	if limits.MaxFiles > 0 && len(uploads) > limits.MaxFiles {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("At most %d images can be uploaded at once", limits.MaxFiles))
	}
	for _, u := range uploads {
		if limits.MaxFileSize > 0 && u.Size > limits.MaxFileSize {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Image %s exceeds the %dMB limit", u.Filename, limits.MaxFileSize>>20))
		}
		exts, ok := allowedImageTypes[strings.ToLower(u.ContentType)]
		if !ok || !containsString(exts, u.Extension()) {
			return shared.NewDomainError(shared.CodeValidation, "Only image files are allowed (jpeg, jpg, png, gif, webp)")
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
