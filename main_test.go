package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	// Alt komutsuz "pazar" server'ı başlatır.
	assert.NotNil(t, root.RunE)

	for _, path := range [][]string{{"serve"}, {"migrate"}, {"admin", "create"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	create, _, err := root.Find([]string{"admin", "create"})
	require.NoError(t, err)
	for _, flag := range []string{"username", "email", "password", "display-name"} {
		assert.NotNil(t, create.Flags().Lookup(flag), flag)
	}
}

func TestUploadsHandler(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644))

	h := uploadsHandler(dir)
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	ok := get("/api/uploads/a.png")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "png", ok.Body.String())
	assert.Contains(t, ok.Header().Get("Cache-Control"), "immutable")

	for _, path := range []string{
		"/api/uploads/",
		"/api/uploads/nested/b.png",
		"/api/uploads/..%2Fsecret.txt",
		"/api/uploads/..%5Csecret.txt",
		"/api/uploads/missing.png",
	} {
		rec := get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "secret", path)
	}
}
