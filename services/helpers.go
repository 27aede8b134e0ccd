package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/ws"
)

// invalid, Validate() hatasını ErrBadRequest ile sarar.
func invalid(err error) error {
	return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
}

// getByIDOrSlug, önce ID ile, bulunamazsa slug ile arar.
// Storefront URL'leri slug, dashboard ID kullanır; ikisi de aynı endpoint'e gelir.
func getByIDOrSlug[T any](
	ctx context.Context,
	key string,
	byID func(context.Context, string) (T, error),
	bySlug func(context.Context, string) (T, error),
) (T, error) {
	v, err := byID(ctx, key)
	if errors.Is(err, pkg.ErrNotFound) {
		return bySlug(ctx, key)
	}
	return v, err
}

// invalidate, açık olan storefront/dashboard sekmelerine "bu listeler bayatladı" der.
func invalidate(hub ws.EventPublisher, id string, tags ...string) {
	hub.BroadcastToAll(ws.CatalogInvalidate(id, tags...))
}

// requireManager, actor'ün buyer veya admin olduğunu doğrular.
func requireManager(actor *models.User) error {
	if actor == nil || !actor.Role.Satisfies(models.RoleBuyer) {
		return fmt.Errorf("%w: merchant account required", pkg.ErrForbidden)
	}
	return nil
}

// ownerScope, dashboard sorgularında kullanılacak owner filtresi:
// admin için boş (her şey), buyer için kendi ID'si.
func ownerScope(actor *models.User) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.ID
}
