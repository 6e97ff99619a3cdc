package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"application/pdf", true},
		{" Image/PNG ", true}, // trimmed and case-insensitive
		{"application/x-msdownload", false},
		{"text/html", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsAllowedContentType(tc.contentType), tc.contentType)
	}
}

// multipartFile builds a *multipart.FileHeader the way gin receives one.
func multipartFile(t *testing.T, fieldName, fileName string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File[fieldName]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveAndRemove(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	file := multipartFile(t, "files", "giay-khai-sinh.pdf", []byte("%PDF-1.4 test"))
	storedName, err := store.Save(file)
	require.NoError(t, err)

	// The stored name is randomized but keeps the extension.
	assert.NotEqual(t, "giay-khai-sinh.pdf", storedName)
	assert.Equal(t, ".pdf", filepath.Ext(storedName))

	data, err := os.ReadFile(filepath.Join(store.Dir, storedName))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)

	second, err := store.Save(multipartFile(t, "files", "giay-khai-sinh.pdf", []byte("other")))
	require.NoError(t, err)
	assert.NotEqual(t, storedName, second)

	store.Remove(storedName, second, "")
	_, err = os.Stat(filepath.Join(store.Dir, storedName))
	assert.True(t, os.IsNotExist(err))
}
