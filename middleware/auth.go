// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Auth → RequireRole → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/pazar/handlers"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Token geçerliyse kullanıcı DB'den getirilir — rol token'dan değil
// DB'den okunur, böylece admin'in yaptığı rol değişikliği hemen geçerli olur.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required, use: Bearer <token>")
			return
		}

		user, err := m.authenticate(r.Context(), tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Optional, token varsa kullanıcıyı context'e ekler; yoksa veya geçersizse
// request anonim olarak devam eder. Public storefront route'larında kullanılır.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString, ok := bearerToken(r); ok {
			if user, err := m.authenticate(r.Context(), tokenString); err == nil {
				r = r.WithContext(withUser(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole, Require'dan SONRA çalışır. Kullanıcının rolü roles'tan birini
// karşılamıyorsa 403 döner. Admin her rolü karşılar.
//
// Kullanım:
//
//	authMw.Require(middleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(h.Users.List)))
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
			if !ok {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
				return
			}

			if !user.Role.Satisfies(roles...) {
				pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := m.authService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	// Token geçerli ama kullanıcı silinmiş olabilir
	user, err := m.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkg.ErrUnauthorized
	}

	// Password hash'i temizle — context'te taşınmamalı
	user.PasswordHash = ""
	return user, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, handlers.UserContextKey, user)
}
