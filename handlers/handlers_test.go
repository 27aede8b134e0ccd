package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/ratelimit"
	"github.com/akinalp/pazar/services"
)

type fakeAuth struct {
	services.AuthService
}

func (fakeAuth) Login(_ context.Context, req *models.LoginRequest) (*services.AuthTokens, error) {
	if req.Password != "correct-horse" {
		return nil, pkg.ErrUnauthorized
	}
	return &services.AuthTokens{AccessToken: "a", RefreshToken: "r"}, nil
}

// recordingAuth, Register'a gelen isteği saklar.
type recordingAuth struct {
	services.AuthService
	got *models.CreateUserRequest
}

func (a *recordingAuth) Register(_ context.Context, req *models.CreateUserRequest) (*services.AuthTokens, error) {
	a.got = req
	return &services.AuthTokens{AccessToken: "a", RefreshToken: "r"}, nil
}

type fakeProducts struct {
	services.ProductService
	lastUpdate *models.UpdateProductRequest
}

func (f *fakeProducts) Update(_ context.Context, _ *models.User, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	f.lastUpdate = req
	return &models.Product{ID: id}, nil
}

type fakeOrders struct {
	services.OrderService
	lastFilter models.OrderFilter
}

func (f *fakeOrders) ListMine(_ context.Context, _ string, filter models.OrderFilter) ([]models.Order, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func withTestUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, u))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) pkg.APIResponse {
	t.Helper()
	var resp pkg.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute)
	defer limiter.Stop()
	h := NewAuthHandler(fakeAuth{}, limiter)

	login := func(password string) *httptest.ResponseRecorder {
		body := `{"login":"ayse","password":"` + password + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, login("wrong").Code)
	// Başarılı giriş sayacı sıfırlar.
	assert.Equal(t, http.StatusOK, login("correct-horse").Code)
	assert.Equal(t, http.StatusUnauthorized, login("wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, login("wrong").Code)

	rec := login("correct-horse")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "too many login attempts")
}

func TestLogin_InvalidBody(t *testing.T) {
	h := NewAuthHandler(fakeAuth{}, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_LanguageFromHeader(t *testing.T) {
	auth := &recordingAuth{}
	h := NewAuthHandler(auth, nil)

	register := func(body, acceptLanguage string) string {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		req.Header.Set("Accept-Language", acceptLanguage)
		rec := httptest.NewRecorder()
		h.Register(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		return auth.got.Language
	}

	assert.Equal(t, "tr", register(`{"username":"ayse"}`, "tr-TR,tr;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", register(`{"username":"ayse"}`, "de-DE"))
	// Açıkça seçilen dil header'ı ezer.
	assert.Equal(t, "en", register(`{"username":"ayse","language":"en"}`, "tr-TR"))
}

func TestProductUpdate_NullVersusAbsent(t *testing.T) {
	products := &fakeProducts{}
	h := NewProductHandler(products)
	user := &models.User{ID: "b1", Role: models.RoleBuyer}

	tests := []struct {
		name         string
		body         string
		wantBrand    bool
		wantCategory bool
	}{
		{"absent", `{"name":"Yeni"}`, false, false},
		{"explicit null clears", `{"brand_id":null}`, true, false},
		{"both", `{"brand_id":"b","category_id":"c"}`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/manage/products/p1", strings.NewReader(tt.body))
			req.SetPathValue("id", "p1")
			rec := httptest.NewRecorder()
			h.Update(rec, withTestUser(req, user))

			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, products.lastUpdate)
			assert.Equal(t, tt.wantBrand, products.lastUpdate.SetBrand)
			assert.Equal(t, tt.wantCategory, products.lastUpdate.SetCategory)
		})
	}
}

func TestProductUpdate_RequiresUser(t *testing.T) {
	h := NewProductHandler(&fakeProducts{})

	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPatch, "/api/manage/products/p1", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMine_FilterAndPagination(t *testing.T) {
	orders := &fakeOrders{}
	h := NewOrderHandler(orders)
	user := &models.User{ID: "c1", Role: models.RoleCustomer}

	rec := httptest.NewRecorder()
	h.ListMine(rec, withTestUser(httptest.NewRequest(http.MethodGet, "/api/orders?status=lost", nil), user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ListMine(rec, withTestUser(httptest.NewRequest(http.MethodGet, "/api/orders?status=shipped&page=0&limit=5000", nil), user))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderShipped, orders.lastFilter.Status)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, []any{}, resp.Data, "empty lists are [] not null")
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, models.MaxPageLimit, resp.Meta.Limit)
}
