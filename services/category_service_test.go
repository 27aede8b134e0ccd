package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

func TestCategories_CycleRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	root, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Ev"})
	require.NoError(t, err)
	mid, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Mutfak", ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Tencere", ParentID: &mid.ID})
	require.NoError(t, err)

	missing := "missing"
	_, err = e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Yetim", ParentID: &missing})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	for _, parent := range []string{root.ID, leaf.ID} {
		_, err = e.categories.Update(ctx, root.ID, &models.UpdateCategoryRequest{ParentID: &parent, SetParent: true})
		require.ErrorIs(t, err, pkg.ErrBadRequest, parent)
	}

	// Kardeş dala taşımak serbest; kök yapmak da.
	other, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Bahçe"})
	require.NoError(t, err)
	moved, err := e.categories.Update(ctx, leaf.ID, &models.UpdateCategoryRequest{ParentID: &other.ID, SetParent: true})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *moved.ParentID)
	moved, err = e.categories.Update(ctx, leaf.ID, &models.UpdateCategoryRequest{SetParent: true})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestCategories_DeleteReparentsAndNullsProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	shop := e.store(t, seller, "Giyim")

	root, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Giyim"})
	require.NoError(t, err)
	mid, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Üst Giyim", ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Gömlek", ParentID: &mid.ID})
	require.NoError(t, err)

	shirt, err := e.products.Create(ctx, seller, &models.CreateProductRequest{
		StoreID: shop.ID, Name: "Keten Gömlek", Price: 2500, Stock: 4, CategoryID: &mid.ID,
	})
	require.NoError(t, err)

	require.NoError(t, e.categories.Delete(ctx, mid.ID))

	got, err := e.categories.Get(ctx, leaf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID, "children move up to the deleted node's parent")

	p, err := e.products.Get(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Nil(t, p.CategoryID)

	tree, err := e.categories.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, leaf.ID, tree[0].Children[0].ID)
}

func TestCategories_TreeCountsFollowProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	shop := e.store(t, seller, "Kırtasiye")
	pens, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Kalem"})
	require.NoError(t, err)
	books, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Defter"})
	require.NoError(t, err)

	countOf := func(id string) int {
		t.Helper()
		tree, err := e.categories.Tree(ctx)
		require.NoError(t, err)
		for _, c := range tree {
			if c.ID == id {
				return c.ProductCount
			}
		}
		t.Fatalf("category %s not in tree", id)
		return 0
	}

	// Ağaç cache'e alınır.
	assert.Zero(t, countOf(pens.ID))

	pen, err := e.products.Create(ctx, seller, &models.CreateProductRequest{
		StoreID: shop.ID, Name: "Dolma Kalem", Price: 900, Stock: 10, CategoryID: &pens.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(pens.ID))

	_, err = e.products.Update(ctx, seller, pen.ID, &models.UpdateProductRequest{CategoryID: &books.ID, SetCategory: true})
	require.NoError(t, err)
	assert.Zero(t, countOf(pens.ID))
	assert.Equal(t, 1, countOf(books.ID))

	require.NoError(t, e.products.Delete(ctx, seller, pen.ID))
	assert.Zero(t, countOf(books.ID))
}
