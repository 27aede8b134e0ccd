// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz — repository interface'leri üzerinden
// çalışır. Her interface'in bir sqlite_* implementasyonu vardır ve hepsi
// database.TxQuerier alır: aynı repository hem *sql.DB hem *sql.Tx ile
// kullanılabilir (checkout gibi atomik akışlar için).
package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List, admin kullanıcı listesi. Toplam kayıt sayısını da döner.
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Count(ctx context.Context) (int, error)
	// UpdateProfile, display_name, phone ve language alanlarını yazar.
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role models.UserRole) error
	UpdateAvatar(ctx context.Context, userID string, avatarURL *string) error
	Delete(ctx context.Context, id string) error
	// HasOrders, kullanıcının kendi siparişi ya da sahip olduğu mağazaların
	// ürünlerini içeren bir sipariş olup olmadığı. İkisinde de kullanıcı silinemez;
	// mağaza cascade ile silinirse order_items sahipsiz kalır.
	HasOrders(ctx context.Context, userID string) (bool, error)
}
