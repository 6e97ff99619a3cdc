package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore writes request attachments into a shared directory. Stored
// names are randomized so concurrent uploads never collide; the original
// name is kept in the database, not on disk.
type UploadStore struct {
	Dir string
}

// Allowed attachment content types: images and common document formats.
var allowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// NewUploadStore creates the upload directory if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{Dir: dir}, nil
}

// IsAllowedContentType reports whether a file's declared content type may be
// stored as an attachment.
func IsAllowedContentType(contentType string) bool {
	return allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Save writes one multipart file under a generated name and returns the
// stored name.
func (s *UploadStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	storedName := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, storedName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filepath.Join(s.Dir, storedName))
		return "", err
	}
	return storedName, nil
}

// Remove deletes stored files. Cleanup is best-effort: uploads are not
// transactional with the database, so a failed remove is only logged by the
// caller.
func (s *UploadStore) Remove(storedNames ...string) {
	for _, name := range storedNames {
		if name == "" {
			continue
		}
		_ = os.Remove(filepath.Join(s.Dir, name))
	}
}
