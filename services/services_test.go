package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/database/dbtest"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg/cache"
	"github.com/akinalp/pazar/pkg/email"
	"github.com/akinalp/pazar/pkg/ratelimit"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// fakeHub, yayınlanan event'lerin op'larını kaydeder.
type fakeHub struct {
	mu           sync.Mutex
	ops          []string
	disconnected []string
}

func (h *fakeHub) Publish(_ ws.Target, event ws.Event) { h.record(event) }
func (h *fakeHub) BroadcastToAll(event ws.Event)       { h.record(event) }

func (h *fakeHub) DisconnectUser(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, userID)
}

func (h *fakeHub) record(event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, event.Op)
}

func (h *fakeHub) count(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, o := range h.ops {
		if o == op {
			n++
		}
	}
	return n
}

// fakeSender, gönderilen email'leri saklar.
type fakeSender struct {
	mu          sync.Mutex
	resetTokens []string
	confirmed   []email.OrderEmail
	statuses    []email.OrderEmail
}

func (s *fakeSender) SendPasswordReset(_ context.Context, _ email.Recipient, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTokens = append(s.resetTokens, token)
	return nil
}

func (s *fakeSender) SendOrderConfirmation(_ context.Context, _ email.Recipient, order email.OrderEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = append(s.confirmed, order)
	return nil
}

func (s *fakeSender) SendOrderStatus(_ context.Context, _ email.Recipient, order email.OrderEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, order)
	return nil
}

// env, gerçek SQLite üzerinde tüm service grafiği.
type env struct {
	hub       *fakeHub
	sender    *fakeSender
	mail      *MailDispatcher
	uploadDir string

	users  repository.UserRepository
	orders repository.OrderRepository

	auth       AuthService
	stores     StoreService
	brands     BrandService
	categories CategoryService
	products   ProductService
	reviews    ReviewService
	carts      CartService
	orderSvc   OrderService
	sections   SectionService
	stats      StatsService
	userSvc    UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)

	hub := &fakeHub{}
	sender := &fakeSender{}
	mail := NewMailDispatcher(sender)

	treeCache := cache.New[string, []models.Category](time.Minute, time.Minute)
	settingsCache := cache.New[string, models.SystemSettings](time.Minute, time.Minute)
	reviewLimiter := ratelimit.New(100, time.Minute)
	t.Cleanup(func() {
		mail.Wait()
		treeCache.Close()
		settingsCache.Close()
		reviewLimiter.Stop()
	})

	users := repository.NewSQLiteUserRepo(db.Conn)
	storeRepo := repository.NewSQLiteStoreRepo(db.Conn)
	brandRepo := repository.NewSQLiteBrandRepo(db.Conn)
	productRepo := repository.NewSQLiteProductRepo(db.Conn)
	orders := repository.NewSQLiteOrderRepo(db.Conn)

	uploadDir := t.TempDir()
	uploads := NewUploadService(uploadDir, 1<<20)
	settings := NewSettingsService(repository.NewSQLiteSettingsRepo(db.Conn), uploads, hub, settingsCache)
	stores := NewStoreService(storeRepo, users, uploads, hub)
	brands := NewBrandService(brandRepo, uploads, hub)
	categories := NewCategoryService(db.Conn, repository.NewSQLiteCategoryRepo(db.Conn), uploads, hub, treeCache)
	products := NewProductService(db.Conn, productRepo, brandRepo, stores, categories, uploads, hub)

	return &env{
		hub:        hub,
		sender:     sender,
		mail:       mail,
		uploadDir:  uploadDir,
		users:      users,
		orders:     orders,
		auth:       NewAuthService(users, repository.NewSQLiteSessionRepo(db.Conn), repository.NewSQLiteResetTokenRepo(db.Conn), uploads, mail, hub, "test-secret", 15, 7),
		stores:     stores,
		brands:     brands,
		categories: categories,
		products:   products,
		reviews:    NewReviewService(db.Conn, repository.NewSQLiteReviewRepo(db.Conn), orders, products, reviewLimiter, hub),
		carts:      NewCartService(repository.NewSQLiteCartRepo(db.Conn), productRepo),
		orderSvc:   NewOrderService(db.Conn, orders, users, storeRepo, settings, mail, hub, nil),
		sections:   NewSectionService(db.Conn, repository.NewSQLiteSectionRepo(db.Conn), productRepo, brandRepo, categories, hub),
		stats:      NewStatsService(repository.NewSQLiteStatsRepo(db.Conn), orders),
		userSvc:    NewUserService(users, uploads, hub),
	}
}

func (e *env) user(t *testing.T, name string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Username:     name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Language:     "en",
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) store(t *testing.T, owner *models.User, name string) *models.Store {
	t.Helper()
	s, err := e.stores.Create(context.Background(), owner, &models.CreateStoreRequest{Name: name})
	require.NoError(t, err)
	return s
}

func (e *env) product(t *testing.T, owner *models.User, store *models.Store, name string, price int64, stock int) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), owner, &models.CreateProductRequest{
		StoreID: store.ID,
		Name:    name,
		Price:   price,
		Stock:   stock,
	})
	require.NoError(t, err)
	return p
}

func (e *env) checkout(t *testing.T, customer *models.User, lines map[string]int) *models.Order {
	t.Helper()
	ctx := context.Background()
	for productID, qty := range lines {
		_, err := e.carts.Add(ctx, customer.ID, &models.AddCartItemRequest{ProductID: productID, Quantity: qty})
		require.NoError(t, err)
	}
	order, err := e.orderSvc.Checkout(ctx, customer, &models.CheckoutRequest{ShippingAddress: testAddress()})
	require.NoError(t, err)
	return order
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName: "Ayşe Yılmaz",
		Phone:    "+90 555 000 0000",
		Line1:    "Bağdat Cad. 1",
		City:     "İstanbul",
		Country:  "TR",
	}
}
