package repository

import "context"

// StatsRepository, dashboard sayaçları için interface.
//
// ownerID boşsa sayılar tüm sistem içindir (admin); doluysa o kullanıcının
// mağazalarıyla sınırlıdır (buyer).
type StatsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context, ownerID string) (int, error)
	CountStores(ctx context.Context, ownerID string) (int, error)
	// CountOrders, status boşsa tüm durumları sayar.
	CountOrders(ctx context.Context, ownerID, status string) (int, error)
	CountLowStock(ctx context.Context, ownerID string, threshold int) (int, error)
	// Revenue, iptal edilmemiş siparişlerin toplamı (buyer için kendi kalemlerinin toplamı).
	Revenue(ctx context.Context, ownerID string) (int64, error)
}
