package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// fileHeader builds a real multipart.FileHeader by parsing a request.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("itemImage", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })
	return req.MultipartForm.File["itemImage"][0]
}

func TestLocalStore_Upload(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/static/uploads/")

	url, err := store.Upload(context.Background(), "alice", fileHeader(t, "my wallet!.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(url, "_my_wallet_.png"))

	rel := strings.TrimPrefix(url, "/static/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestLocalStore_RejectsNonImages(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/static")

	_, err := store.Upload(context.Background(), "alice", fileHeader(t, "notes.txt", []byte("just some text")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "image", sanitizeName(".png"))
	assert.Equal(t, "a_b-c", sanitizeName("dir/a b-c.jpeg"))
	assert.Len(t, sanitizeName(strings.Repeat("x", 100)+".png"), 40)
}

func TestObjectName(t *testing.T) {
	name := objectName("user-1", "photo.jpg", ".jpg")
	assert.True(t, strings.HasPrefix(name, "reports/user-1/"))
	assert.True(t, strings.HasSuffix(name, "_photo.jpg"))
}
