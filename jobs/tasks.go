package jobs

import (
	"context"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/services"
)

// Job isimleri — log satırlarında ve RunNow'da kullanılır.
const (
	SessionCleanup = "session-cleanup"
	OrderCleanup   = "stale-order-cancel"
	CartCleanup    = "cart-prune"
)

// CleanupTasks, uygulamanın standart temizlik işlerini config'e göre oluşturur:
//   - süresi dolmuş oturum ve şifre sıfırlama token'ları
//   - PendingOrderTTL'den eski pending siparişlerin iptali (stok iade edilir)
//   - CartTTL'den uzun süredir dokunulmamış sepet satırları
func CleanupTasks(cfg config.JobsConfig, auth services.AuthService, orders services.OrderService, carts services.CartService) []Task {
	return []Task{
		{
			Name: SessionCleanup,
			Spec: cfg.SessionCleanupSpec,
			Run:  auth.PurgeExpired,
		},
		{
			Name: OrderCleanup,
			Spec: cfg.OrderCleanupSpec,
			Run: func(ctx context.Context) (int64, error) {
				n, err := orders.CancelStale(ctx, cfg.PendingOrderTTL)
				return int64(n), err
			},
		},
		{
			Name: CartCleanup,
			Spec: cfg.CartCleanupSpec,
			Run: func(ctx context.Context) (int64, error) {
				return carts.PruneStale(ctx, cfg.CartTTL)
			},
		},
	}
}
