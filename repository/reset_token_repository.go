package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// PasswordResetRepository, şifre sıfırlama token'ları için interface.
// Token'lar plaintext değil SHA256 hash olarak saklanır.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error

	// GetByTokenHash, hash'e göre token kaydını bulur.
	// Bulunamazsa pkg.ErrNotFound döner.
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)

	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID, kullanıcının TÜM token'larını siler — yeni token
	// oluşturulmadan ve şifre sıfırlandıktan sonra çağrılır.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired, süresi dolmuş token'ları siler (cleanup job).
	DeleteExpired(ctx context.Context) (int64, error)

	// GetLatestByUserID, cooldown kontrolü için kullanıcının en son token'ı.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)
}
