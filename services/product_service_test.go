package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

func TestProductImages_LimitDeleteReorder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	other := e.user(t, "other", models.RoleBuyer)
	shop := e.store(t, seller, "Seramik")
	vase := e.product(t, seller, shop, "Vazo", 4500, 3)

	_, err := e.products.AddImages(ctx, other, vase.ID, multipartFiles(t, pngBytes))
	require.ErrorIs(t, err, pkg.ErrForbidden)

	got, err := e.products.AddImages(ctx, seller, vase.ID, multipartFiles(t, pngBytes, pngBytes, pngBytes))
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	for i, img := range got.Images {
		assert.Equal(t, i, img.Position)
	}

	// Toplam sınır aşılırsa hiçbir dosya yazılmaz.
	tooMany := make([][]byte, models.MaxProductImages-2)
	for i := range tooMany {
		tooMany[i] = pngBytes
	}
	_, err = e.products.AddImages(ctx, seller, vase.ID, multipartFiles(t, tooMany...))
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	entries, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Ortadaki silinince pozisyonlar 0..n-1 olarak sıkışır.
	first, middle, last := got.Images[0], got.Images[1], got.Images[2]
	got, err = e.products.DeleteImage(ctx, seller, vase.ID, middle.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, first.ID, got.Images[0].ID)
	assert.Equal(t, 0, got.Images[0].Position)
	assert.Equal(t, last.ID, got.Images[1].ID)
	assert.Equal(t, 1, got.Images[1].Position)
	_, err = os.Stat(filepath.Join(e.uploadDir, strings.TrimPrefix(middle.URL, UploadURLPrefix)))
	assert.True(t, os.IsNotExist(err))

	_, err = e.products.DeleteImage(ctx, seller, vase.ID, middle.ID)
	require.ErrorIs(t, err, pkg.ErrNotFound)

	// Sıralama listesi görsel kümesiyle birebir aynı olmalı.
	for _, ids := range [][]string{
		{last.ID},
		{last.ID, last.ID},
		{last.ID, "foreign"},
		{last.ID, first.ID, middle.ID},
	} {
		_, err = e.products.ReorderImages(ctx, seller, vase.ID, &models.ReorderImagesRequest{ImageIDs: ids})
		require.ErrorIs(t, err, pkg.ErrBadRequest, "%v", ids)
	}

	got, err = e.products.ReorderImages(ctx, seller, vase.ID, &models.ReorderImagesRequest{ImageIDs: []string{last.ID, first.ID}})
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.Images[0].ID)
	assert.Equal(t, first.ID, got.Images[1].ID)

	// Ürün silinince kalan dosyalar da silinir.
	require.NoError(t, e.products.Delete(ctx, seller, vase.ID))
	entries, err = os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProducts_InactiveStoreHidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	open := e.store(t, seller, "Açık Mağaza")
	closing := e.store(t, seller, "Kapanan Mağaza")
	visible := e.product(t, seller, open, "Görünür", 100, 5)
	hidden := e.product(t, seller, closing, "Gizli", 100, 5)

	list, total, err := e.products.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	inactive := false
	_, err = e.stores.Update(ctx, seller, closing.ID, &models.UpdateStoreRequest{IsActive: &inactive})
	require.NoError(t, err)

	list, total, err = e.products.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)

	_, err = e.products.Get(ctx, hidden.Slug)
	require.ErrorIs(t, err, pkg.ErrNotFound)
	_, _, err = e.products.List(ctx, ProductQuery{Store: closing.Slug})
	require.NoError(t, err)

	// Dashboard'da sahibi görmeye devam eder.
	managed, err := e.products.GetManaged(ctx, seller, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, hidden.ID, managed.ID)
}
