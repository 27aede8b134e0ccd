package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/pazar/pkg"
)

// sqliteTimeLayout, SQLite'ın CURRENT_TIMESTAMP formatı.
// Zaman karşılaştırmaları string karşılaştırması olarak yapıldığı için
// Go tarafından yazılan tüm zamanlar UTC ve bu formatta saklanır.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// sqlTime, time.Time'ı CURRENT_TIMESTAMP ile karşılaştırılabilir string'e çevirir.
func sqlTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// scanner, hem *sql.Row hem *sql.Rows tarafından karşılanır —
// tek bir scanX fonksiyonu iki durumda da kullanılabilir.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation, SQLite UNIQUE constraint hatasını kontrol eder.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isUniqueOn, UNIQUE hatasının belirli bir kolondan kaynaklanıp kaynaklanmadığını döner.
// SQLite mesajı "UNIQUE constraint failed: users.email" şeklindedir.
func isUniqueOn(err error, column string) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), column)
}

// isForeignKeyViolation, FK hatası — var olmayan store/brand/category id'si.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// requireAffected, UPDATE/DELETE'in en az bir satırı etkilediğini doğrular.
// 0 satır → pkg.ErrNotFound.
func requireAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected (%s): %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, what)
	}
	return nil
}

// inClause, "?, ?, ?" placeholder listesi ve args üretir.
func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

// whereSQL, koşul listesini "WHERE a AND b" şeklinde birleştirir.
func whereSQL(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// orderBy, sort anahtarını izin verilen ORDER BY ifadesine çevirir.
// Kullanıcıdan gelen string asla doğrudan SQL'e yazılmaz — tanınmayan
// değerler fallback'e düşer.
func orderBy(sort string, allowed map[string]string, fallback string) string {
	if expr, ok := allowed[sort]; ok {
		return " ORDER BY " + expr
	}
	return " ORDER BY " + allowed[fallback]
}
