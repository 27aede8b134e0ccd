package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// SectionRepository, ana sayfa bölümleri için interface.
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id string) (*models.Section, error)
	// List, bölümleri position sırasıyla ve manual ürün ID'leriyle döner.
	List(ctx context.Context, activeOnly bool) ([]models.Section, error)
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
	// SetProducts, manual bölümün ürün listesini verilen sırayla değiştirir.
	SetProducts(ctx context.Context, sectionID string, productIDs []string) error
}
