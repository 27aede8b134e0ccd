package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/database/dbtest"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
	"github.com/akinalp/pazar/ws"
)

// testServer, main'deki kurulumun aynısı: gerçek repository, service,
// handler ve middleware zinciri; sadece metrics kapalı.
type testServer struct {
	handler http.Handler
	users   *Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: 15, RefreshTokenExpiry: 7},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxSize: 1 << 20},
		Email:  config.EmailConfig{AppURL: "http://localhost:3000"},
	}

	db := dbtest.New(t)
	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	sender, err := initMailer(cfg)
	require.NoError(t, err)

	repos := initRepositories(db.Conn)
	svcs, limiters, caches := initServices(db.Conn, repos, hub, sender, nil, cfg)
	t.Cleanup(func() {
		svcs.Mail.Wait()
		limiters.Stop()
		caches.Close()
	})

	mux := http.NewServeMux()
	initRoutes(mux, initHandlers(svcs, limiters, hub, cfg), svcs.Auth, svcs.Settings, repos.User, nil, cfg)
	return &testServer{handler: mux, users: repos}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// data, başarılı yanıtın data alanını v'ye açar ve meta'yı döner.
func data(t *testing.T, rec *httptest.ResponseRecorder, v any) *pkg.PageMeta {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Meta    *pkg.PageMeta   `json:"meta"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.True(t, resp.Success, resp.Error)
	if v != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.Meta
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tokens services.AuthTokens
	data(t, rec, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func (s *testServer) login(t *testing.T, login, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": login, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens services.AuthTokens
	data(t, rec, &tokens)
	return tokens.AccessToken
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	_, _, err := services.EnsureAdmin(context.Background(), s.users.User, &models.CreateUserRequest{
		Username: "admin", Email: "admin@example.com", Password: "admin-password",
	})
	require.NoError(t, err)
	return s.login(t, "Admin@Example.com", "admin-password")
}

func (s *testServer) me(t *testing.T, token string) models.User {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u models.User
	data(t, rec, &u)
	return u
}

func TestRouter_ShopFlow(t *testing.T) {
	s := newTestServer(t)

	adminToken := s.admin(t)
	customer := s.register(t, "ayse")
	seller := s.register(t, "mehmet")

	// Yeni hesaplar customer'dır; dashboard kapalı.
	rec := s.do(t, http.MethodGet, "/api/manage/stats", seller, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/manage/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sellerID := s.me(t, seller).ID
	rec = s.do(t, http.MethodPatch, "/api/manage/users/"+sellerID+"/role", adminToken, map[string]string{"role": "buyer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPatch, "/api/manage/users/"+sellerID+"/role", seller, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Mağaza ve ürün; slug'lar isimden türetilir.
	rec = s.do(t, http.MethodPost, "/api/manage/stores", seller, map[string]string{"name": "Seramik Atölyesi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var store models.Store
	data(t, rec, &store)
	assert.Equal(t, "seramik-atolyesi", store.Slug)
	assert.Equal(t, sellerID, store.OwnerID)

	rec = s.do(t, http.MethodPost, "/api/manage/products", seller, map[string]any{
		"store_id": store.ID, "name": "Vazo", "price": 4500, "stock": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var vase models.Product
	data(t, rec, &vase)

	rec = s.do(t, http.MethodPost, "/api/manage/products", customer, map[string]any{
		"store_id": store.ID, "name": "Sahte", "price": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Storefront filtreleri query string'den okunur.
	listTotal := func(query string) int {
		t.Helper()
		rec := s.do(t, http.MethodGet, "/api/products"+query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var list []models.Product
		meta := data(t, rec, &list)
		require.NotNil(t, meta)
		assert.Len(t, list, meta.Total)
		return meta.Total
	}
	assert.Equal(t, 1, listTotal("?store="+store.Slug+"&in_stock=1"))
	assert.Equal(t, 0, listTotal("?min_price=5000"))
	assert.Equal(t, 1, listTotal("?max_price=4500&q=vaz"))
	assert.Equal(t, 1, listTotal("?min_price=-5"), "invalid price filter is ignored")

	rec = s.do(t, http.MethodGet, "/api/products/"+vase.Slug, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/products/yok", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Sepet ve sipariş.
	rec = s.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"product_id": vase.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/cart/items", customer, map[string]any{"product_id": vase.ID, "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "more than in stock")
	rec = s.do(t, http.MethodPost, "/api/cart/items", customer, map[string]any{"product_id": vase.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cart models.Cart
	data(t, rec, &cart)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, int64(9000), cart.Subtotal)

	rec = s.do(t, http.MethodPost, "/api/orders", customer, map[string]any{"shipping_address": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/orders", customer, map[string]any{
		"shipping_address": map[string]string{
			"full_name": "Ayşe Yılmaz", "phone": "+905551112233", "line1": "Bağdat Cd. 1",
			"city": "İstanbul", "country": "TR",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order models.Order
	data(t, rec, &order)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(9000), order.Subtotal)
	require.Len(t, order.Items, 1)

	// Stok düştü, sepet boşaldı.
	assert.Equal(t, 0, listTotal("?in_stock=true"))
	rec = s.do(t, http.MethodGet, "/api/cart", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data(t, rec, &cart)
	assert.Zero(t, cart.ItemCount)

	// Sipariş sahibine ve satıcıya görünür, başkasına değil.
	rec = s.do(t, http.MethodGet, "/api/orders/"+order.ID, seller, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/manage/orders/"+order.ID, seller, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/manage/orders/"+order.ID+"/status", seller, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data(t, rec, &order)
	assert.Equal(t, models.OrderConfirmed, order.Status)

	// Siparişi olan mağaza silinemez.
	rec = s.do(t, http.MethodDelete, "/api/manage/stores/"+store.ID, seller, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/manage/users/"+sellerID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_MaintenanceMode(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin(t)
	customer := s.register(t, "ayse")

	rec := s.do(t, http.MethodPatch, "/api/manage/settings", customer, map[string]bool{"maintenance_mode": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPatch, "/api/manage/settings", adminToken, map[string]bool{"maintenance_mode": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, token := range []string{"", customer} {
		rec = s.do(t, http.MethodGet, "/api/products", token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("Retry-After"))
	}
	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "mehmet", "email": "mehmet@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "registration is closed")

	// Ayarlar, login ve admin erişimi açık kalır.
	rec = s.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settings models.SystemSettings
	data(t, rec, &settings)
	assert.True(t, settings.MaintenanceMode)

	s.login(t, "ayse", "password123")
	rec = s.do(t, http.MethodGet, "/api/products", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/manage/settings", adminToken, map[string]bool{"maintenance_mode": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ReviewsRequireDelivery(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin(t)
	customer := s.register(t, "ayse")

	rec := s.do(t, http.MethodPost, "/api/manage/stores", adminToken, map[string]string{"name": "Kitapçı"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var store models.Store
	data(t, rec, &store)
	rec = s.do(t, http.MethodPost, "/api/manage/products", adminToken, map[string]any{
		"store_id": store.ID, "name": "Roman", "price": 300, "stock": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var book models.Product
	data(t, rec, &book)

	review := map[string]any{"rating": 5, "comment": "Çok güzel"}
	path := "/api/products/" + book.Slug + "/reviews"
	rec = s.do(t, http.MethodPost, path, "", review)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, path, customer, review)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reviews []models.Review
	meta := data(t, rec, &reviews)
	assert.Empty(t, reviews)
	require.NotNil(t, meta)
	assert.Zero(t, meta.Total)
}
