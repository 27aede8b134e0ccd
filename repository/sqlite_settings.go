package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/pazar/database"
)

type sqliteSettingsRepo struct {
	db database.TxQuerier
}

// NewSQLiteSettingsRepo, constructor.
func NewSQLiteSettingsRepo(db database.TxQuerier) SettingsRepository {
	return &sqliteSettingsRepo{db: db}
}

func (r *sqliteSettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM system_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

func (r *sqliteSettingsRepo) SetMany(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO system_settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			k, v,
		); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", k, err)
		}
	}
	return nil
}
