package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
)

// CartService, kullanıcının sepeti. Sepet sunucuda tutulur — kullanıcı
// başka cihazdan girince aynı sepeti görür.
type CartService interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	// Add, miktarı mevcut satıra ekler.
	Add(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.Cart, error)
	// SetQuantity, satır miktarını doğrudan yazar; 0 satırı siler.
	SetQuantity(ctx context.Context, userID, productID string, req *models.SetCartQuantityRequest) (*models.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) error
	// PruneStale, maxAge'den uzun süredir dokunulmamış satırları siler (cleanup job).
	PruneStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	lines, err := s.cartRepo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewCart(lines), nil
}

func (s *cartService) Add(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	current, err := s.cartRepo.Quantity(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.write(ctx, userID, req.ProductID, current+req.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) SetQuantity(ctx context.Context, userID, productID string, req *models.SetCartQuantityRequest) (*models.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	if req.Quantity == 0 {
		return s.Remove(ctx, userID, productID)
	}

	if err := s.write(ctx, userID, productID, req.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// write, ürünün satılabilir olduğunu ve stoğun yettiğini doğrulayıp satırı yazar.
// Stok burada sadece ön kontroldür; asıl garanti checkout'taki guarded UPDATE'tir.
func (s *cartService) write(ctx context.Context, userID, productID string, qty int) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: product does not exist", pkg.ErrBadRequest)
		}
		return err
	}
	if !product.Purchasable() {
		return fmt.Errorf("%w: product is not available", pkg.ErrBadRequest)
	}
	if !product.InStock() {
		return fmt.Errorf("%w: product is out of stock", pkg.ErrBadRequest)
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: only %d left in stock", pkg.ErrBadRequest, product.Stock)
	}

	return s.cartRepo.SetQuantity(ctx, userID, productID, qty)
}

func (s *cartService) Remove(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.cartRepo.Clear(ctx, userID)
}

func (s *cartService) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.cartRepo.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
}
