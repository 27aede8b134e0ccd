package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// BrandRepository, marka veritabanı işlemleri için interface.
type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*models.Brand, error)
	List(ctx context.Context, params models.ListParams) ([]models.Brand, int, error)
	Update(ctx context.Context, brand *models.Brand) error
	UpdateLogo(ctx context.Context, id string, url *string) error
	// Delete, markayı siler; products.brand_id FK ile NULL olur.
	Delete(ctx context.Context, id string) error
}
