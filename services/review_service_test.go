package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

func TestReview_RequiresDeliveredPurchase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.user(t, "admin", models.RoleAdmin)
	seller := e.user(t, "seller", models.RoleBuyer)
	ayse := e.user(t, "ayse", models.RoleCustomer)
	mehmet := e.user(t, "mehmet", models.RoleCustomer)
	shop := e.store(t, seller, "Kahve Evi")
	beans := e.product(t, seller, shop, "Kahve Çekirdeği", 1200, 20)

	order := e.checkout(t, ayse, map[string]int{beans.ID: 1})

	// Teslim edilmeden yorum yok.
	_, err := e.reviews.Create(ctx, ayse, beans.Slug, &models.CreateReviewRequest{Rating: 5})
	require.ErrorIs(t, err, pkg.ErrForbidden)

	for _, status := range []string{"confirmed", "shipped", "delivered"} {
		_, err := e.orderSvc.UpdateStatus(ctx, admin, order.ID, &models.UpdateOrderStatusRequest{Status: status})
		require.NoError(t, err)
	}

	_, err = e.reviews.Create(ctx, ayse, beans.Slug, &models.CreateReviewRequest{Rating: 6})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	review, err := e.reviews.Create(ctx, ayse, beans.Slug, &models.CreateReviewRequest{Rating: 4, Comment: "  Taze  "})
	require.NoError(t, err)
	assert.Equal(t, "Taze", review.Comment)

	// Ürün başına tek yorum.
	_, err = e.reviews.Create(ctx, ayse, beans.ID, &models.CreateReviewRequest{Rating: 3})
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)

	// Satın almamış kullanıcı.
	_, err = e.reviews.Create(ctx, mehmet, beans.ID, &models.CreateReviewRequest{Rating: 1})
	require.ErrorIs(t, err, pkg.ErrForbidden)

	p, err := e.products.Get(ctx, beans.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.RatingCount)
	assert.InDelta(t, 4.0, p.RatingAvg, 0.001)

	// Güncelleme puanı yeniden hesaplar; başkası düzenleyemez.
	two := 2
	_, err = e.reviews.Update(ctx, mehmet, review.ID, &models.UpdateReviewRequest{Rating: &two})
	require.ErrorIs(t, err, pkg.ErrForbidden)
	_, err = e.reviews.Update(ctx, ayse, review.ID, &models.UpdateReviewRequest{Rating: &two})
	require.NoError(t, err)

	p, err = e.products.Get(ctx, beans.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.RatingAvg, 0.001)

	// Admin silebilir; puan sıfırlanır.
	require.ErrorIs(t, e.reviews.Delete(ctx, mehmet, review.ID), pkg.ErrForbidden)
	require.NoError(t, e.reviews.Delete(ctx, admin, review.ID))

	p, err = e.products.Get(ctx, beans.ID)
	require.NoError(t, err)
	assert.Zero(t, p.RatingCount)
	assert.Zero(t, p.RatingAvg)

	reviews, total, err := e.reviews.ListByProduct(ctx, beans.Slug, models.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, reviews)
}
