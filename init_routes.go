// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: JWT zorunlu
//   - shop / shopAuth: storefront route'ları (bakım modunda admin dışına kapalı)
//   - manage: buyer veya admin (dashboard)
//   - admin: sadece admin
package main

import (
	"net/http"
	"strings"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/middleware"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/metrics"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/services"
	"github.com/akinalp/pazar/static"
)

// jsonBodyLimit, upload olmayan isteklerin body üst sınırı.
const jsonBodyLimit = 1 << 20

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Go 1.22 mux'ında literal segment parametrik olandan
// daha spesifiktir — "/api/categories/tree" ile "/api/categories/{idOrSlug}"
// çakışmaz.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	settingsService services.SettingsService,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	cfg *config.Config,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	maintenance := middleware.NewMaintenance(settingsService)
	requireManager := middleware.RequireRole(models.RoleBuyer)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)
	jsonBody := middleware.MaxBody(jsonBodyLimit)
	uploadBody := middleware.MaxBody(cfg.Upload.MaxSize*models.MaxProductImages + jsonBodyLimit)

	// ─── Middleware Chain Helpers ───
	public := func(handler http.HandlerFunc) http.Handler {
		return jsonBody(handler)
	}
	auth := func(handler http.HandlerFunc) http.Handler {
		return jsonBody(authMw.Require(handler))
	}
	shop := func(handler http.HandlerFunc) http.Handler {
		return authMw.Optional(maintenance.Guard(handler))
	}
	shopAuth := func(handler http.HandlerFunc) http.Handler {
		return jsonBody(authMw.Require(maintenance.Guard(handler)))
	}
	manage := func(handler http.HandlerFunc) http.Handler {
		return jsonBody(authMw.Require(requireManager(handler)))
	}
	manageUpload := func(handler http.HandlerFunc) http.Handler {
		return uploadBody(authMw.Require(requireManager(handler)))
	}
	admin := func(handler http.HandlerFunc) http.Handler {
		return jsonBody(authMw.Require(requireAdmin(handler)))
	}
	adminUpload := func(handler http.HandlerFunc) http.Handler {
		return uploadBody(authMw.Require(requireAdmin(handler)))
	}

	// ─── Health & Metrics ───
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pazar"})
	})
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// ╔══════════════════════════════════════════╗
	// ║  AUTH & HESAP                            ║
	// ╚══════════════════════════════════════════╝
	mux.Handle("POST /api/auth/register", jsonBody(shop(h.Auth.Register)))
	mux.Handle("POST /api/auth/login", public(h.Auth.Login))
	mux.Handle("POST /api/auth/refresh", public(h.Auth.Refresh))
	mux.Handle("POST /api/auth/logout", public(h.Auth.Logout))
	mux.Handle("POST /api/auth/forgot-password", public(h.Auth.ForgotPassword))
	mux.Handle("POST /api/auth/reset-password", public(h.Auth.ResetPassword))

	mux.Handle("GET /api/users/me", auth(h.Auth.Me))
	mux.Handle("PATCH /api/users/me", auth(h.Auth.UpdateProfile))
	mux.Handle("POST /api/users/me/password", auth(h.Auth.ChangePassword))
	mux.Handle("POST /api/users/me/avatar", uploadBody(authMw.Require(http.HandlerFunc(h.Auth.UploadAvatar))))

	// ╔══════════════════════════════════════════╗
	// ║  STOREFRONT (public katalog)             ║
	// ╚══════════════════════════════════════════╝
	mux.Handle("GET /api/settings", public(h.Settings.Get))
	mux.Handle("GET /api/sections", shop(h.Section.ListPublic))

	mux.Handle("GET /api/stores", shop(h.Store.List))
	mux.Handle("GET /api/stores/{idOrSlug}", shop(h.Store.Get))

	mux.Handle("GET /api/brands", shop(h.Brand.List))
	mux.Handle("GET /api/brands/{idOrSlug}", shop(h.Brand.Get))

	mux.Handle("GET /api/categories", shop(h.Category.List))
	mux.Handle("GET /api/categories/tree", shop(h.Category.Tree))
	mux.Handle("GET /api/categories/{idOrSlug}", shop(h.Category.Get))

	mux.Handle("GET /api/products", shop(h.Product.List))
	mux.Handle("GET /api/products/{idOrSlug}", shop(h.Product.Get))
	mux.Handle("GET /api/products/{idOrSlug}/related", shop(h.Product.Related))
	mux.Handle("GET /api/products/{idOrSlug}/reviews", shop(h.Review.List))
	mux.Handle("POST /api/products/{idOrSlug}/reviews", shopAuth(h.Review.Create))
	mux.Handle("PATCH /api/reviews/{id}", auth(h.Review.Update))
	mux.Handle("DELETE /api/reviews/{id}", auth(h.Review.Delete))

	// ─── Sepet & Sipariş ───
	mux.Handle("GET /api/cart", auth(h.Cart.Get))
	mux.Handle("DELETE /api/cart", auth(h.Cart.Clear))
	mux.Handle("POST /api/cart/items", shopAuth(h.Cart.Add))
	mux.Handle("PUT /api/cart/items/{productId}", shopAuth(h.Cart.SetQuantity))
	mux.Handle("DELETE /api/cart/items/{productId}", auth(h.Cart.Remove))

	mux.Handle("POST /api/orders", shopAuth(h.Order.Checkout))
	mux.Handle("GET /api/orders", auth(h.Order.ListMine))
	mux.Handle("GET /api/orders/{id}", auth(h.Order.GetMine))
	mux.Handle("POST /api/orders/{id}/cancel", auth(h.Order.CancelMine))

	// ╔══════════════════════════════════════════╗
	// ║  DASHBOARD (buyer + admin)               ║
	// ╚══════════════════════════════════════════╝
	mux.Handle("GET /api/manage/stats", manage(h.Stats.Dashboard))

	mux.Handle("GET /api/manage/stores", manage(h.Store.ListManaged))
	mux.Handle("POST /api/manage/stores", manage(h.Store.Create))
	mux.Handle("GET /api/manage/stores/{id}", manage(h.Store.GetManaged))
	mux.Handle("PATCH /api/manage/stores/{id}", manage(h.Store.Update))
	mux.Handle("DELETE /api/manage/stores/{id}", manage(h.Store.Delete))
	mux.Handle("POST /api/manage/stores/{id}/logo", manageUpload(h.Store.UploadLogo))
	mux.Handle("POST /api/manage/stores/{id}/banner", manageUpload(h.Store.UploadBanner))

	mux.Handle("GET /api/manage/products", manage(h.Product.ListManaged))
	mux.Handle("POST /api/manage/products", manage(h.Product.Create))
	mux.Handle("GET /api/manage/products/{id}", manage(h.Product.GetManaged))
	mux.Handle("PATCH /api/manage/products/{id}", manage(h.Product.Update))
	mux.Handle("DELETE /api/manage/products/{id}", manage(h.Product.Delete))
	mux.Handle("POST /api/manage/products/{id}/images", manageUpload(h.Product.AddImages))
	mux.Handle("PUT /api/manage/products/{id}/images/order", manage(h.Product.ReorderImages))
	mux.Handle("DELETE /api/manage/products/{id}/images/{imageId}", manage(h.Product.DeleteImage))

	mux.Handle("GET /api/manage/orders", manage(h.Order.ListManaged))
	mux.Handle("GET /api/manage/orders/{id}", manage(h.Order.GetManaged))
	mux.Handle("PATCH /api/manage/orders/{id}/status", manage(h.Order.UpdateStatus))

	// ─── Sadece admin ───
	mux.Handle("POST /api/manage/brands", admin(h.Brand.Create))
	mux.Handle("PATCH /api/manage/brands/{id}", admin(h.Brand.Update))
	mux.Handle("DELETE /api/manage/brands/{id}", admin(h.Brand.Delete))
	mux.Handle("POST /api/manage/brands/{id}/logo", adminUpload(h.Brand.UploadLogo))

	mux.Handle("POST /api/manage/categories", admin(h.Category.Create))
	mux.Handle("PATCH /api/manage/categories/{id}", admin(h.Category.Update))
	mux.Handle("DELETE /api/manage/categories/{id}", admin(h.Category.Delete))
	mux.Handle("POST /api/manage/categories/{id}/image", adminUpload(h.Category.UploadImage))

	mux.Handle("GET /api/manage/sections", admin(h.Section.ListAll))
	mux.Handle("POST /api/manage/sections", admin(h.Section.Create))
	mux.Handle("GET /api/manage/sections/{id}", admin(h.Section.Get))
	mux.Handle("PATCH /api/manage/sections/{id}", admin(h.Section.Update))
	mux.Handle("DELETE /api/manage/sections/{id}", admin(h.Section.Delete))
	mux.Handle("PUT /api/manage/sections/{id}/products", admin(h.Section.SetProducts))

	mux.Handle("PATCH /api/manage/settings", admin(h.Settings.Update))
	mux.Handle("POST /api/manage/settings/logo", adminUpload(h.Settings.UploadLogo))

	mux.Handle("GET /api/manage/users", admin(h.User.List))
	mux.Handle("GET /api/manage/users/{id}", admin(h.User.Get))
	mux.Handle("PATCH /api/manage/users/{id}/role", admin(h.User.UpdateRole))
	mux.Handle("DELETE /api/manage/users/{id}", admin(h.User.Delete))

	// ─── Yüklenen dosyalar ───
	mux.Handle("GET "+services.UploadURLPrefix, uploadsHandler(cfg.Upload.Dir))

	// WebSocket — tarayıcılar upgrade sırasında header gönderemez, token
	// ?token= query parametresiyle gelir; handler kendi doğrular.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	// ─── Storefront SPA ───
	// Diğer hiçbir pattern'e uymayan GET'ler gömülü storefront'a düşer.
	mux.Handle("GET /", static.Handler())
}

// uploadsHandler, upload dizinindeki dosyaları servis eder.
//
// http.FileServer zaten ".." path'lerini reddeder. Ek olarak sadece düz
// dosya isimleri kabul edilir — upload dizininde alt klasör yok.
func uploadsHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix(services.UploadURLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.ContainsAny(r.URL.Path, `/\`) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(w, r)
	}))
}
