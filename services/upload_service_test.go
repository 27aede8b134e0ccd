package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/pkg"
)

// pngBytes, DetectContentType'ın image/png dediği en küçük içerik.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("0", 64))

// multipartFiles, verilen içerikleri "files" alanında multipart form olarak
// kodlayıp geri okur — handler'ın gördüğü FileHeader'ların aynısı.
func multipartFiles(t *testing.T, contents ...[]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, c := range contents {
		part, err := w.CreateFormFile("files", "image"+string(rune('a'+i))+".png")
		require.NoError(t, err)
		_, err = part.Write(c)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func saveFirst(t *testing.T, s UploadService, content []byte) (string, error) {
	t.Helper()
	fh := multipartFiles(t, content)[0]
	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	return s.SaveImage(f, fh)
}

func TestUpload_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewUploadService(dir, 1<<20)

	url, err := saveFirst(t, s, pngBytes)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, UploadURLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := strings.TrimPrefix(url, UploadURLPrefix)
	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	s.Remove(url)
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
}

func TestUpload_SniffsContentType(t *testing.T) {
	s := NewUploadService(t.TempDir(), 1<<20)

	// Uzantısı .png olsa da içerik HTML.
	_, err := saveFirst(t, s, []byte("<!DOCTYPE html><html><body>hi</body></html>"))
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Contains(t, err.Error(), "file type not allowed")

	_, err = saveFirst(t, s, []byte{})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestUpload_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	s := NewUploadService(dir, 32)

	_, err := saveFirst(t, s, pngBytes)
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Contains(t, err.Error(), "file too large (max 32 B)")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected upload leaves nothing on disk")
}

func TestUpload_RemoveStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	require.NoError(t, os.Mkdir(dir, 0o755))
	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	s := NewUploadService(dir, 1<<20)
	s.Remove(UploadURLPrefix + "../keep.txt")
	s.Remove("/elsewhere/keep.txt")

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
