package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// CategoryRepository, kategori veritabanı işlemleri için interface.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	// GetAll, tüm kategorileri düz liste olarak döner (ağaç ve cycle kontrolü için).
	GetAll(ctx context.Context) ([]models.Category, error)
	List(ctx context.Context, params models.ListParams) ([]models.Category, int, error)
	Update(ctx context.Context, category *models.Category) error
	UpdateImage(ctx context.Context, id string, url *string) error
	// Reparent, fromID'nin çocuklarını toParentID altına taşır (nil → kök).
	Reparent(ctx context.Context, fromID string, toParentID *string) error
	Delete(ctx context.Context, id string) error
	// GetMaxPosition, aynı parent altındaki en yüksek position (yoksa -1).
	GetMaxPosition(ctx context.Context, parentID *string) (int, error)
}
