package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/ratelimit"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// ReviewService, ürün yorumları iş mantığı.
//
// Yorum yazmak için ürünü içeren teslim edilmiş bir sipariş gerekir.
// Her yazma işlemi, ürünün rating_avg/rating_count alanlarını aynı
// transaction'da yeniden hesaplar — ürün kartı ile yorum listesi hiç ayrışmaz.
type ReviewService interface {
	ListByProduct(ctx context.Context, productIDOrSlug string, params models.ListParams) ([]models.Review, int, error)
	Create(ctx context.Context, actor *models.User, productIDOrSlug string, req *models.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, actor *models.User, reviewID string, req *models.UpdateReviewRequest) (*models.Review, error)
	// Delete, yorum sahibi veya admin tarafından silinir.
	Delete(ctx context.Context, actor *models.User, reviewID string) error
}

type reviewService struct {
	db         *sql.DB
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	products   ProductService
	limiter    *ratelimit.Limiter
	hub        ws.EventPublisher
}

// NewReviewService, constructor. limiter kullanıcı ID'si anahtarıyla yorum
// oluşturmayı sınırlar; yaşam döngüsü (Stop) çağırana aittir.
func NewReviewService(
	db *sql.DB,
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	products ProductService,
	limiter *ratelimit.Limiter,
	hub ws.EventPublisher,
) ReviewService {
	return &reviewService{
		db:         db,
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		products:   products,
		limiter:    limiter,
		hub:        hub,
	}
}

func (s *reviewService) ListByProduct(ctx context.Context, productIDOrSlug string, params models.ListParams) ([]models.Review, int, error) {
	product, err := s.products.Get(ctx, productIDOrSlug)
	if err != nil {
		return nil, 0, err
	}
	params.Normalize()
	return s.reviewRepo.ListByProduct(ctx, product.ID, params)
}

func (s *reviewService) Create(ctx context.Context, actor *models.User, productIDOrSlug string, req *models.CreateReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	if !s.limiter.Allow(actor.ID) {
		return nil, fmt.Errorf("%w: %s", pkg.ErrTooManyRequests,
			ratelimit.FormatRetryMessage(s.limiter.RetryAfterSeconds(actor.ID)))
	}

	product, err := s.products.Get(ctx, productIDOrSlug)
	if err != nil {
		return nil, err
	}

	purchased, err := s.orderRepo.HasDeliveredPurchase(ctx, actor.ID, product.ID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, fmt.Errorf("%w: only customers who received this product can review it", pkg.ErrForbidden)
	}

	review := &models.Review{
		ProductID: product.ID,
		UserID:    actor.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Author:    actor.Summary(),
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteReviewRepo(tx)
		if err := repo.Create(ctx, review); err != nil {
			return err
		}
		_, err := repo.RecomputeRating(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidate(s.hub, product.ID, ws.TagReviews, ws.TagProducts)
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor *models.User, reviewID string, req *models.UpdateReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.ID {
		return nil, fmt.Errorf("%w: you can only edit your own review", pkg.ErrForbidden)
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteReviewRepo(tx)
		if err := repo.Update(ctx, review); err != nil {
			return err
		}
		_, err := repo.RecomputeRating(ctx, review.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidate(s.hub, review.ProductID, ws.TagReviews, ws.TagProducts)
	return s.reviewRepo.GetByID(ctx, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, actor *models.User, reviewID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: you can only delete your own review", pkg.ErrForbidden)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteReviewRepo(tx)
		if err := repo.Delete(ctx, reviewID); err != nil {
			return err
		}
		_, err := repo.RecomputeRating(ctx, review.ProductID)
		return err
	})
	if err != nil {
		return err
	}

	invalidate(s.hub, review.ProductID, ws.TagReviews, ws.TagProducts)
	return nil
}
