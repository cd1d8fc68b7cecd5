package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// formImages collects the files sent under field. The returned close func
// must be called once the uploads have been consumed.
func formImages(c *gin.Context, field string) ([]catalogapp.ImageUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, func() {}, shared.NewDomainError(shared.CodeValidation, "Upload exceeds the allowed size")
		}
		return nil, func() {}, shared.NewDomainError(shared.CodeValidation, "Expected a multipart form with field "+field)
	}

	headers := form.File[field]
	uploads := make([]catalogapp.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, catalogapp.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}
