package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// StoreRepository, mağaza veritabanı işlemleri için interface.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	List(ctx context.Context, filter models.StoreFilter) ([]models.Store, int, error)
	// Update, name, slug, description ve is_active alanlarını yazar.
	Update(ctx context.Context, store *models.Store) error
	UpdateLogo(ctx context.Context, id string, url *string) error
	UpdateBanner(ctx context.Context, id string, url *string) error
	Delete(ctx context.Context, id string) error
	// HasOrders, mağazanın ürünlerini içeren sipariş olup olmadığı.
	HasOrders(ctx context.Context, storeID string) (bool, error)
}
