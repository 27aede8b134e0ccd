// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB bağlantısını alır ve interface döner.
package main

import (
	"database/sql"

	"github.com/akinalp/pazar/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
// Fonksiyon imzalarını temiz tutar: initServices 13 parametre yerine tek struct alır.
type Repositories struct {
	User       repository.UserRepository
	Session    repository.SessionRepository
	ResetToken repository.PasswordResetRepository
	Store      repository.StoreRepository
	Brand      repository.BrandRepository
	Category   repository.CategoryRepository
	Product    repository.ProductRepository
	Review     repository.ReviewRepository
	Cart       repository.CartRepository
	Order      repository.OrderRepository
	Section    repository.SectionRepository
	Settings   repository.SettingsRepository
	Stats      repository.StatsRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Go'nun sql.DB'si thread-safe connection pool'dur, paylaşılması güvenlidir.
// Transaction gereken yerlerde service'ler aynı constructor'ları *sql.Tx ile çağırır.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:       repository.NewSQLiteUserRepo(conn),
		Session:    repository.NewSQLiteSessionRepo(conn),
		ResetToken: repository.NewSQLiteResetTokenRepo(conn),
		Store:      repository.NewSQLiteStoreRepo(conn),
		Brand:      repository.NewSQLiteBrandRepo(conn),
		Category:   repository.NewSQLiteCategoryRepo(conn),
		Product:    repository.NewSQLiteProductRepo(conn),
		Review:     repository.NewSQLiteReviewRepo(conn),
		Cart:       repository.NewSQLiteCartRepo(conn),
		Order:      repository.NewSQLiteOrderRepo(conn),
		Section:    repository.NewSQLiteSectionRepo(conn),
		Settings:   repository.NewSQLiteSettingsRepo(conn),
		Stats:      repository.NewSQLiteStatsRepo(conn),
	}
}
