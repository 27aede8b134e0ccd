package middleware

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/pazar/handlers"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/metrics"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/services"
)

// fakeAuth, sadece ValidateAccessToken'ı karşılar; token string'i user ID'dir.
type fakeAuth struct {
	services.AuthService
}

func (fakeAuth) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	if token == "bad" {
		return nil, pkg.ErrUnauthorized
	}
	return &models.TokenClaims{UserID: token}, nil
}

// fakeUsers, bellekteki kullanıcılar.
type fakeUsers struct {
	repository.UserRepository
	users map[string]models.User
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	return &u, nil
}

type fakeSettings struct {
	settings models.SystemSettings
	err      error
}

func (f *fakeSettings) Get(context.Context) (*models.SystemSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Update(context.Context, *models.UpdateSettingsRequest) (*models.SystemSettings, error) {
	return nil, errors.ErrUnsupported
}

func (f *fakeSettings) UpdateLogo(context.Context, multipart.File, *multipart.FileHeader) (*models.SystemSettings, error) {
	return nil, errors.ErrUnsupported
}

func newAuthMiddleware() *AuthMiddleware {
	return NewAuthMiddleware(fakeAuth{}, fakeUsers{users: map[string]models.User{
		"c1": {ID: "c1", Username: "ayse", Role: models.RoleCustomer, PasswordHash: "secret"},
		"b1": {ID: "b1", Username: "seller", Role: models.RoleBuyer},
		"a1": {ID: "a1", Username: "root", Role: models.RoleAdmin},
	}})
}

// whoami, context'teki kullanıcının ID'sini yazar (anonimse "-").
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(handlers.UserContextKey).(*models.User)
	if user == nil {
		_, _ = io.WriteString(w, "-")
		return
	}
	_, _ = io.WriteString(w, user.ID+":"+user.PasswordHash)
})

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_Require(t *testing.T) {
	h := newAuthMiddleware().Require(whoami)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"invalid token", "bad", http.StatusUnauthorized, ""},
		{"deleted user", "ghost", http.StatusUnauthorized, ""},
		{"valid", "c1", http.StatusOK, "c1:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String(), "password hash must be cleared")
			}
		})
	}
}

func TestAuth_Optional(t *testing.T) {
	h := newAuthMiddleware().Optional(whoami)

	assert.Equal(t, "-", serve(h, "").Body.String())
	assert.Equal(t, "-", serve(h, "bad").Body.String())
	assert.Equal(t, "b1:", serve(h, "b1").Body.String())
}

func TestRequireRole(t *testing.T) {
	auth := newAuthMiddleware()
	manage := auth.Require(RequireRole(models.RoleBuyer)(whoami))
	admin := auth.Require(RequireRole(models.RoleAdmin)(whoami))

	assert.Equal(t, http.StatusForbidden, serve(manage, "c1").Code)
	assert.Equal(t, http.StatusOK, serve(manage, "b1").Code)
	assert.Equal(t, http.StatusOK, serve(manage, "a1").Code, "admin satisfies every role")

	assert.Equal(t, http.StatusForbidden, serve(admin, "b1").Code)
	assert.Equal(t, http.StatusOK, serve(admin, "a1").Code)

	// Require olmadan kullanılırsa context'te kullanıcı yoktur.
	assert.Equal(t, http.StatusUnauthorized, serve(RequireRole(models.RoleBuyer)(whoami), "").Code)
}

func TestMaintenance_Guard(t *testing.T) {
	settings := &fakeSettings{settings: models.DefaultSettings()}
	auth := newAuthMiddleware()
	h := auth.Optional(NewMaintenance(settings).Guard(whoami))

	assert.Equal(t, http.StatusOK, serve(h, "").Code)

	settings.settings.MaintenanceMode = true
	rec := serve(h, "c1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "").Code)
	assert.Equal(t, http.StatusOK, serve(h, "a1").Code)

	// Ayarlar okunamazsa mağaza açık kalır.
	settings.err = errors.New("db down")
	assert.Equal(t, http.StatusOK, serve(h, "c1").Code)
}

func TestMaxBody(t *testing.T) {
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	small := httptest.NewRecorder()
	h.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusNoContent, small.Code)

	big := httptest.NewRecorder()
	h.ServeHTTP(big, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, big.Code)
}

func TestMetrics_RoutePatternLabel(t *testing.T) {
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{idOrSlug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Metrics(m, mux)

	for _, path := range []string{"/api/products/a", "/api/products/b", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `pazar_http_requests_total{method="GET",route="GET /api/products/{idOrSlug}",status="418"} 2`)
	assert.Contains(t, body, `pazar_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestMetrics_NilPassthrough(t *testing.T) {
	rec := serve(Metrics(nil, whoami), "")
	assert.Equal(t, "-", rec.Body.String())
}
