// Package dbtest, testler için migration'ları uygulanmış geçici SQLite
// veritabanı açar.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/database"
)

// New, t.TempDir() altında yeni bir veritabanı oluşturur.
// Test bitince bağlantı otomatik kapanır.
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
