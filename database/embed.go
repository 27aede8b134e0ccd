package database

import (
	"embed"
	"io/fs"
)

// embeddedMigrations, migrations/ dizinindeki SQL dosyaları — derleme zamanında
// binary'ye gömülür, deploy edilen binary yanında dosya gerekmez.
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations, gömülü migration dosyalarını kök dizin olarak sunar.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// Sadece pattern hatalıysa olur — derleme zamanında sabittir.
		panic(err)
	}
	return sub
}
