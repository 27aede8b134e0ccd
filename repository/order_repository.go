package repository

import (
	"context"
	"time"

	"github.com/akinalp/pazar/models"
)

// OrderRepository, sipariş ve sipariş kalemleri için interface.
type OrderRepository interface {
	// Create, siparişi ve kalemlerini yazar. Checkout transaction'ı içinde çağrılır.
	Create(ctx context.Context, order *models.Order) error
	// GetByID, kalemleri ve müşteri özetiyle birlikte döner.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForOwner, siparişi sadece ownerID'nin mağazalarına ait kalemlerle döner.
	// Sipariş o mağazalardan kalem içermiyorsa pkg.ErrNotFound.
	GetForOwner(ctx context.Context, id, ownerID string) (*models.Order, error)
	// List, filtreye uyan siparişleri kalemleriyle döner. StoreOwnerID doluysa
	// kalemler de o kullanıcının mağazalarıyla sınırlanır.
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	// UpdateStatus, durum hâlâ from ise to'ya çeker. Arada başka bir işlem
	// durumu değiştirdiyse pkg.ErrConflict.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
	// HasDeliveredPurchase, kullanıcının ürünü içeren teslim edilmiş siparişi var mı.
	HasDeliveredPurchase(ctx context.Context, userID, productID string) (bool, error)
	// ListPendingBefore, cutoff'tan önce oluşturulmuş pending siparişlerin ID'leri.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	// OwnersOf, siparişteki mağazaların sahiplerinin ID'leri (event hedefleri).
	OwnersOf(ctx context.Context, orderID string) ([]string, error)
}
