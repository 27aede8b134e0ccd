package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// ReviewRepository, ürün yorumları için interface.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string, params models.ListParams) ([]models.Review, int, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
	// RecomputeRating, ürünün rating_avg ve rating_count alanlarını yorumlardan
	// yeniden hesaplar. Yorum yazan işlemle aynı transaction'da çağrılmalı.
	RecomputeRating(ctx context.Context, productID string) (models.RatingSummary, error)
}
