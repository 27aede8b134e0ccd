package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// ProductRepository, ürün ve ürün görseli veritabanı işlemleri için interface.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	// GetByID ve GetBySlug, görselleri ve store/brand/category özetlerini doldurur.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	// GetByIDs, verilen sırayı koruyarak ürünleri döner; bulunamayanlar atlanır.
	GetByIDs(ctx context.Context, ids []string, publicOnly bool) ([]models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	// DecrementStock, stok yeterliyse düşer ve sold_count'u artırır.
	// Stok yetersizse (veya eşzamanlı bir checkout önce davrandıysa) pkg.ErrConflict.
	DecrementStock(ctx context.Context, productID string, qty int) (remaining int, err error)
	// Restock, iptal edilen siparişin miktarını stoğa geri ekler.
	Restock(ctx context.Context, productID string, qty int) error

	AddImage(ctx context.Context, image *models.ProductImage) error
	GetImage(ctx context.Context, imageID string) (*models.ProductImage, error)
	ListImages(ctx context.Context, productID string) ([]models.ProductImage, error)
	CountImages(ctx context.Context, productID string) (int, error)
	DeleteImage(ctx context.Context, imageID string) error
	// SetImagePositions, imageIDs sırasına göre position'ları 0..n-1 yazar.
	SetImagePositions(ctx context.Context, productID string, imageIDs []string) error
}
