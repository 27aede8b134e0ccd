package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/database/dbtest"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

type fixture struct {
	db       *database.DB
	users    UserRepository
	stores   StoreRepository
	brands   BrandRepository
	cats     CategoryRepository
	products ProductRepository
	reviews  ReviewRepository
	carts    CartRepository
	orders   OrderRepository
	stats    StatsRepository
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.New(t)
	return &fixture{
		db:       db,
		users:    NewSQLiteUserRepo(db.Conn),
		stores:   NewSQLiteStoreRepo(db.Conn),
		brands:   NewSQLiteBrandRepo(db.Conn),
		cats:     NewSQLiteCategoryRepo(db.Conn),
		products: NewSQLiteProductRepo(db.Conn),
		reviews:  NewSQLiteReviewRepo(db.Conn),
		carts:    NewSQLiteCartRepo(db.Conn),
		orders:   NewSQLiteOrderRepo(db.Conn),
		stats:    NewSQLiteStatsRepo(db.Conn),
	}
}

func (f *fixture) user(t *testing.T, name string, role models.UserRole) *models.User {
	u := &models.User{Username: name, Email: strings.ToLower(name) + "@example.com", PasswordHash: "x", Role: role, Language: "en"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) store(t *testing.T, owner *models.User, slug string) *models.Store {
	s := &models.Store{OwnerID: owner.ID, Name: slug, Slug: slug, IsActive: true}
	require.NoError(t, f.stores.Create(context.Background(), s))
	return s
}

func (f *fixture) product(t *testing.T, store *models.Store, slug string, price int64, stock int) *models.Product {
	p := &models.Product{StoreID: store.ID, Name: slug, Slug: slug, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestUserRepo_UniqueAndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "Ayse", models.RoleCustomer)
	assert.Len(t, u.ID, 16)

	err := f.users.Create(ctx, &models.User{Username: "ayse", Email: "other@example.com", PasswordHash: "x", Role: models.RoleCustomer, Language: "en"})
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "username")

	err = f.users.Create(ctx, &models.User{Username: "mehmet", Email: "ayse@example.com", PasswordHash: "x", Role: models.RoleCustomer, Language: "en"})
	require.ErrorIs(t, err, pkg.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "email")

	got, err := f.users.GetByUsername(ctx, "AYSE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	f.user(t, "seller", models.RoleBuyer)
	list, total, err := f.users.List(ctx, models.UserFilter{Role: models.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "seller", list[0].Username)
}

func TestProductRepo_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner", models.RoleBuyer)
	active := f.store(t, owner, "active-store")
	closed := f.store(t, owner, "closed-store")
	closed.IsActive = false
	require.NoError(t, f.stores.Update(ctx, closed))

	cheap := f.product(t, active, "cheap-pen", 500, 10)
	f.product(t, active, "pricey-pen", 5000, 0)
	f.product(t, closed, "hidden-pen", 700, 3)

	list, total, err := f.products.List(ctx, models.ProductFilter{Public: true, ListParams: models.ListParams{Sort: models.SortPriceAsc}})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "kapalı mağazanın ürünü görünmez")
	assert.Equal(t, cheap.ID, list[0].ID)
	require.NotNil(t, list[0].Store)
	assert.Equal(t, "active-store", list[0].Store.Slug)

	maxPrice := int64(1000)
	list, _, err = f.products.List(ctx, models.ProductFilter{Public: true, MaxPrice: &maxPrice, InStock: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cheap.ID, list[0].ID)

	list, _, err = f.products.List(ctx, models.ProductFilter{Public: true, ListParams: models.ListParams{Query: "PRICEY"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pricey-pen", list[0].Slug)
}

func TestProductRepo_DecrementStockGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.store(t, f.user(t, "owner", models.RoleBuyer), "s")
	p := f.product(t, s, "p", 100, 3)

	remaining, err := f.products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = f.products.DecrementStock(ctx, p.ID, 2)
	assert.ErrorIs(t, err, pkg.ErrConflict)

	require.NoError(t, f.products.Restock(ctx, p.ID, 2))
	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, 0, got.SoldCount)
}

func TestProductRepo_Images(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.store(t, f.user(t, "owner", models.RoleBuyer), "s")
	p := f.product(t, s, "p", 100, 3)

	a := &models.ProductImage{ProductID: p.ID, URL: "/api/uploads/a.png", Position: 0}
	b := &models.ProductImage{ProductID: p.ID, URL: "/api/uploads/b.png", Position: 1}
	require.NoError(t, f.products.AddImage(ctx, a))
	require.NoError(t, f.products.AddImage(ctx, b))

	require.NoError(t, f.products.SetImagePositions(ctx, p.ID, []string{b.ID, a.ID}))
	got, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, b.ID, got.Images[0].ID)
	assert.Equal(t, "/api/uploads/b.png", got.Images[0].URL)

	err = f.products.SetImagePositions(ctx, p.ID, []string{"foreign"})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReviewRepo_RecomputeRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.store(t, f.user(t, "owner", models.RoleBuyer), "s")
	p := f.product(t, s, "p", 100, 3)
	u1 := f.user(t, "u1", models.RoleCustomer)
	u2 := f.user(t, "u2", models.RoleCustomer)

	require.NoError(t, f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u1.ID, Rating: 5}))
	require.NoError(t, f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u2.ID, Rating: 2}))
	err := f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u2.ID, Rating: 4})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	summary, err := f.reviews.RecomputeRating(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 3.5, summary.Avg, 0.001)

	list, total, err := f.reviews.ListByProduct(ctx, p.ID, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "u2", list[0].Author.Username, "en yeni önce")
}

func TestCartRepo_LinesAndPrune(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.store(t, f.user(t, "owner", models.RoleBuyer), "s")
	p := f.product(t, s, "p", 250, 5)
	u := f.user(t, "shopper", models.RoleCustomer)

	require.NoError(t, f.carts.SetQuantity(ctx, u.ID, p.ID, 2))
	require.NoError(t, f.carts.SetQuantity(ctx, u.ID, p.ID, 3))

	lines, err := f.carts.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, lines[0].IsActive)
	assert.Equal(t, int64(750), models.NewCart(lines).Subtotal)

	err = f.carts.SetQuantity(ctx, u.ID, "nope", 1)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	n, err := f.carts.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOrderRepo_CreateListAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ownerA := f.user(t, "ownera", models.RoleBuyer)
	ownerB := f.user(t, "ownerb", models.RoleBuyer)
	storeA := f.store(t, ownerA, "a")
	storeB := f.store(t, ownerB, "b")
	pa := f.product(t, storeA, "pa", 100, 5)
	pb := f.product(t, storeB, "pb", 300, 5)
	customer := f.user(t, "cust", models.RoleCustomer)

	order := &models.Order{
		OrderNumber: "PZ-TEST0001", UserID: customer.ID, Status: models.OrderPending,
		Subtotal: 700, Total: 700, Currency: "TRY",
		ShippingAddress: models.ShippingAddress{FullName: "C", Phone: "1", Line1: "L", City: "I", Country: "TR"},
		Items: []models.OrderItem{
			{ProductID: &pa.ID, StoreID: storeA.ID, ProductName: "pa", UnitPrice: 100, Quantity: 1},
			{ProductID: &pb.ID, StoreID: storeB.ID, ProductName: "pb", UnitPrice: 300, Quantity: 2},
		},
	}
	require.NoError(t, f.orders.Create(ctx, order))
	assert.Equal(t, int64(600), order.Items[1].LineTotal)

	got, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "cust", got.Customer.Username)

	// Buyer sadece kendi mağazasının kalemini görür.
	list, total, err := f.orders.List(ctx, models.OrderFilter{StoreOwnerID: ownerA.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, storeA.ID, list[0].Items[0].StoreID)

	owners, err := f.orders.OwnersOf(ctx, order.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ownerA.ID, ownerB.ID}, owners)

	require.NoError(t, f.orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderConfirmed))
	err = f.orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderCancelled)
	assert.True(t, errors.Is(err, pkg.ErrConflict))

	ok, err := f.orders.HasDeliveredPurchase(ctx, customer.ID, pa.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := f.stores.HasOrders(ctx, storeB.ID)
	require.NoError(t, err)
	assert.True(t, has)

	// Mağaza sahibi de sipariş kaydına bağlıdır.
	has, err = f.users.HasOrders(ctx, ownerB.ID)
	require.NoError(t, err)
	assert.True(t, has)
	idle := f.user(t, "idle", models.RoleBuyer)
	f.store(t, idle, "idle-shop")
	has, err = f.users.HasOrders(ctx, idle.ID)
	require.NoError(t, err)
	assert.False(t, has)

	revenue, err := f.stats.Revenue(ctx, ownerB.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), revenue)

	pending, err := f.orders.ListPendingBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, pending, "confirmed sipariş stale sayılmaz")
}

func TestCategoryRepo_ReparentAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := &models.Category{Name: "Root", Slug: "root"}
	require.NoError(t, f.cats.Create(ctx, root))
	mid := &models.Category{Name: "Mid", Slug: "mid", ParentID: &root.ID}
	require.NoError(t, f.cats.Create(ctx, mid))
	leaf := &models.Category{Name: "Leaf", Slug: "leaf", ParentID: &mid.ID}
	require.NoError(t, f.cats.Create(ctx, leaf))

	maxPos, err := f.cats.GetMaxPosition(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, maxPos)

	require.NoError(t, f.cats.Reparent(ctx, mid.ID, mid.ParentID))
	require.NoError(t, f.cats.Delete(ctx, mid.ID))

	got, err := f.cats.GetByID(ctx, leaf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)

	err = f.cats.Create(ctx, &models.Category{Name: "Dup", Slug: "root"})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}
