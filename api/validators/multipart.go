package validators

import (
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
)

const defaultMaxUploadMB = 10

// FilePart is a single uploaded file extracted from a multipart form.
type FilePart struct {
	Filename    string
	ContentType string
	Body        multipart.File
}

func (f *FilePart) Close() error {
	if f == nil || f.Body == nil {
		return nil
	}
	return f.Body.Close()
}

// ParseMultipartForm buffers the request form in memory up to maxMB.
func ParseMultipartForm(r *http.Request, maxMB int) error {
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}
	if err := r.ParseMultipartForm(int64(maxMB) << 20); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

// FormFile pulls the named file part out of a parsed multipart form.
// A missing part is not an error; callers decide whether the file is
// required.
func FormFile(r *http.Request, field string) (*FilePart, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload").WithDetails(map[string]any{"field": field})
	}
	return &FilePart{
		Filename:    header.Filename,
		ContentType: fileContentType(header),
		Body:        file,
	}, nil
}

func fileContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	switch strings.ToLower(path.Ext(header.Filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
