package repository

import (
	"context"
	"time"

	"github.com/akinalp/pazar/models"
)

// CartRepository, sepet satırları için interface. Satırlar (user_id, product_id)
// ile anahtarlanır.
type CartRepository interface {
	// Lines, sepeti canlı ürün fiyatı/stoğu ve ilk görselle birlikte döner.
	Lines(ctx context.Context, userID string) ([]models.CartLine, error)
	// Quantity, satırdaki mevcut miktar; satır yoksa 0.
	Quantity(ctx context.Context, userID, productID string) (int, error)
	// SetQuantity, satırı yazar (upsert). qty 0 ise satırı siler.
	SetQuantity(ctx context.Context, userID, productID string, qty int) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
	// DeleteOlderThan, cutoff'tan beri dokunulmamış satırları siler (cleanup job).
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
