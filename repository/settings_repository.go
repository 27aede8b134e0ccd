package repository

import "context"

// SettingsRepository, system_settings key/value tablosu için interface.
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	// SetMany, verilen anahtarları upsert eder.
	SetMany(ctx context.Context, values map[string]string) error
}
