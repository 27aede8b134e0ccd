package repository

import (
	"context"

	"github.com/akinalp/pazar/models"
)

// SessionRepository, JWT refresh token oturumları için interface.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired, süresi dolmuş oturumları siler ve silinen sayısını döner.
	DeleteExpired(ctx context.Context) (int64, error)
}
