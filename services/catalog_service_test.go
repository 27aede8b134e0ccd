package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/ws"
)

func TestCart_AddSetRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	customer := e.user(t, "ayse", models.RoleCustomer)
	shop := e.store(t, seller, "Oyuncakçı")
	car := e.product(t, seller, shop, "Tahta Araba", 750, 5)

	// Quantity verilmezse 1; tekrar eklemek miktarı artırır.
	_, err := e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: car.ID})
	require.NoError(t, err)
	cart, err := e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: car.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, int64(2250), cart.Subtotal)

	// Stoktan fazlası eklenemez.
	_, err = e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: car.ID, Quantity: 3})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	_, err = e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: "missing"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	cart, err = e.carts.SetQuantity(ctx, customer.ID, car.ID, &models.SetCartQuantityRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cart.ItemCount)

	// 0, satırı siler.
	cart, err = e.carts.SetQuantity(ctx, customer.ID, car.ID, &models.SetCartQuantityRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Subtotal)

	// Stoğu bitmiş ürün sepete girmez.
	soldOut := e.product(t, seller, shop, "Tükendi", 100, 0)
	_, err = e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: soldOut.ID})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Contains(t, err.Error(), "out of stock")

	// Pasif ürün sepete girmez.
	inactive := false
	_, err = e.products.Update(ctx, seller, car.ID, &models.UpdateProductRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: car.ID})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestCart_PruneStale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	customer := e.user(t, "ayse", models.RoleCustomer)
	shop := e.store(t, seller, "Çiçekçi")
	rose := e.product(t, seller, shop, "Gül", 300, 50)

	_, err := e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: rose.ID})
	require.NoError(t, err)

	n, err := e.carts.PruneStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = e.carts.PruneStale(ctx, -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSections_ResolveAndHideEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seller := e.user(t, "seller", models.RoleBuyer)
	shop := e.store(t, seller, "Elektronik")

	brand, err := e.brands.Create(ctx, &models.CreateBrandRequest{Name: "Anadolu"})
	require.NoError(t, err)
	phones, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Telefon"})
	require.NoError(t, err)
	smart, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "Akıllı Telefon", ParentID: &phones.ID})
	require.NoError(t, err)

	a := e.product(t, seller, shop, "Telefon A", 10000, 3)
	b := e.product(t, seller, shop, "Telefon B", 12000, 3)
	_, err = e.products.Update(ctx, seller, b.ID, &models.UpdateProductRequest{
		CategoryID: &smart.ID, SetCategory: true,
		BrandID: &brand.ID, SetBrand: true,
	})
	require.NoError(t, err)

	manual, err := e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Seçtiklerimiz", Kind: "manual", Position: 0})
	require.NoError(t, err)
	missing := "missing"
	_, err = e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Telefonlar", Kind: "category", RefID: &missing, Position: 1})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	// Kategori slug ile verilirse ID olarak saklanır.
	bySlug, err := e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Telefonlar", Kind: "category", RefID: &phones.Slug, Position: 1})
	require.NoError(t, err)
	require.NotNil(t, bySlug.RefID)
	assert.Equal(t, phones.ID, *bySlug.RefID)
	_, err = e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Anadolu", Kind: "brand", RefID: &brand.ID, Position: 2})
	require.NoError(t, err)
	_, err = e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Öne Çıkanlar", Kind: "featured", Position: 3})
	require.NoError(t, err)
	_, err = e.sections.Create(ctx, &models.CreateSectionRequest{Title: "Eksik", Kind: "brand", Position: 4})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	// Manual bölüm boşken ve featured ürün yokken ikisi de gizlenir.
	public, err := e.sections.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Telefonlar", public[0].Title)
	require.Len(t, public[0].Products, 1)
	assert.Equal(t, b.ID, public[0].Products[0].ID, "descendant categories are included")
	assert.Equal(t, "Anadolu", public[1].Title)

	_, err = e.sections.SetProducts(ctx, manual.ID, &models.SetSectionProductsRequest{ProductIDs: []string{b.ID, a.ID}})
	require.NoError(t, err)

	public, err = e.sections.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 3)
	assert.Equal(t, "Seçtiklerimiz", public[0].Title)
	require.Len(t, public[0].Products, 2)
	assert.Equal(t, b.ID, public[0].Products[0].ID)
	assert.Equal(t, a.ID, public[0].Products[1].ID)

	all, err := e.sections.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	assert.Positive(t, e.hub.count(ws.OpCatalogInvalidate))
}

func TestStats_ScopedToOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.user(t, "admin", models.RoleAdmin)
	sellerA := e.user(t, "sellera", models.RoleBuyer)
	sellerB := e.user(t, "sellerb", models.RoleBuyer)
	customer := e.user(t, "ayse", models.RoleCustomer)

	shopA := e.store(t, sellerA, "Mağaza A")
	shopB := e.store(t, sellerB, "Mağaza B")
	pa := e.product(t, sellerA, shopA, "Ürün A", 1000, 10)
	pb := e.product(t, sellerB, shopB, "Ürün B", 2000, 3)

	e.checkout(t, customer, map[string]int{pa.ID: 2, pb.ID: 1})

	_, err := e.stats.Dashboard(ctx, customer)
	require.ErrorIs(t, err, pkg.ErrForbidden)

	all, err := e.stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Users)
	assert.Equal(t, 2, all.Stores)
	assert.Equal(t, 2, all.Products)
	assert.Equal(t, 1, all.Orders)
	assert.Equal(t, 1, all.PendingOrders)
	assert.Equal(t, 1, all.LowStock)
	require.Len(t, all.RecentOrders, 1)

	mine, err := e.stats.Dashboard(ctx, sellerA)
	require.NoError(t, err)
	assert.Zero(t, mine.Users)
	assert.Equal(t, 1, mine.Stores)
	assert.Equal(t, 1, mine.Products)
	assert.Zero(t, mine.LowStock)
	assert.Equal(t, int64(2000), mine.Revenue)
}

func TestUsers_RoleAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.user(t, "admin", models.RoleAdmin)
	seller := e.user(t, "seller", models.RoleBuyer)
	customer := e.user(t, "ayse", models.RoleCustomer)
	idle := e.user(t, "idle", models.RoleCustomer)

	_, err := e.userSvc.UpdateRole(ctx, admin, admin.ID, &models.UpdateRoleRequest{Role: "customer"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)
	_, err = e.userSvc.UpdateRole(ctx, admin, idle.ID, &models.UpdateRoleRequest{Role: "superuser"})
	require.ErrorIs(t, err, pkg.ErrBadRequest)

	got, err := e.userSvc.UpdateRole(ctx, admin, idle.ID, &models.UpdateRoleRequest{Role: "buyer"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, got.Role)
	assert.Contains(t, e.hub.disconnected, idle.ID)

	buyers, total, err := e.userSvc.List(ctx, models.UserFilter{Role: models.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, buyers, 2)

	// Siparişi olan kullanıcı silinemez.
	shop := e.store(t, seller, "Pazar Yeri")
	p := e.product(t, seller, shop, "Bal", 900, 10)
	e.checkout(t, customer, map[string]int{p.ID: 1})
	require.ErrorIs(t, e.userSvc.Delete(ctx, admin, customer.ID), pkg.ErrConflict)
	// Siparişte ürünü olan mağazanın sahibi de silinemez; mağaza yerinde kalır.
	require.ErrorIs(t, e.userSvc.Delete(ctx, admin, seller.ID), pkg.ErrConflict)
	_, err = e.stores.Get(ctx, shop.ID, false)
	require.NoError(t, err)

	require.ErrorIs(t, e.userSvc.Delete(ctx, admin, admin.ID), pkg.ErrBadRequest)
	require.NoError(t, e.userSvc.Delete(ctx, admin, idle.ID))
	_, err = e.userSvc.Get(ctx, idle.ID)
	require.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestCategories_NonLatinNamesGetDistinctSlugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	japan, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "日本"})
	require.NoError(t, err)
	china, err := e.categories.Create(ctx, &models.CreateCategoryRequest{Name: "中国"})
	require.NoError(t, err)

	assert.NotEmpty(t, japan.Slug)
	assert.NotEqual(t, japan.Slug, china.Slug)

	got, err := e.categories.Get(ctx, china.Slug)
	require.NoError(t, err)
	assert.Equal(t, china.ID, got.ID)
}
