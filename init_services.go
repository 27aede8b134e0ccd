// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralları:
// 1. upload + settings → diğer service'lerden ÖNCE (ortak dependency)
// 2. store + category → product'tan ÖNCE
// 3. product → review'dan ÖNCE
package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg/cache"
	"github.com/akinalp/pazar/pkg/email"
	"github.com/akinalp/pazar/pkg/i18n"
	"github.com/akinalp/pazar/pkg/metrics"
	"github.com/akinalp/pazar/pkg/ratelimit"
	"github.com/akinalp/pazar/services"
	"github.com/akinalp/pazar/ws"
)

// Cache TTL'leri. Yazmalarda zaten boşaltılırlar; TTL sadece üst sınır.
const (
	categoryTreeTTL = 10 * time.Minute
	settingsTTL     = 5 * time.Minute
	cacheCleanup    = 15 * time.Minute
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth     services.AuthService
	Upload   services.UploadService
	User     services.UserService
	Store    services.StoreService
	Brand    services.BrandService
	Category services.CategoryService
	Product  services.ProductService
	Review   services.ReviewService
	Cart     services.CartService
	Order    services.OrderService
	Section  services.SectionService
	Settings services.SettingsService
	Stats    services.StatsService
	Mail     *services.MailDispatcher
}

// RateLimiters, tüm rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login  *ratelimit.Limiter
	Review *ratelimit.Limiter
}

// Stop, limiter'ların cleanup goroutine'lerini durdurur.
func (l *RateLimiters) Stop() {
	l.Login.Stop()
	l.Review.Stop()
}

// Caches, service'lerin paylaştığı TTL cache'ler. Close, cleanup goroutine'lerini durdurur.
type Caches struct {
	CategoryTree *cache.TTLCache[string, []models.Category]
	Settings     *cache.TTLCache[string, models.SystemSettings]
}

func (c *Caches) Close() {
	c.CategoryTree.Close()
	c.Settings.Close()
}

// initMailer, email gönderici. RESEND_API_KEY yoksa email'ler sadece loglanır.
func initMailer(cfg *config.Config) (email.Sender, error) {
	bundle, err := i18n.Load(i18n.Locales())
	if err != nil {
		return nil, err
	}

	var transport email.Transport
	if cfg.Email.ResendAPIKey != "" {
		transport = email.NewResendTransport(cfg.Email.ResendAPIKey, cfg.Email.FromEmail)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromEmail)
	} else {
		transport = email.NoopTransport{}
		log.Println("[main] email service disabled (RESEND_API_KEY not set), emails are logged only")
	}

	siteName := models.DefaultSettings().SiteName
	return email.NewMailer(transport, bundle, siteName, cfg.Email.AppURL, email.DefaultRetryPolicy), nil
}

// initServices, tüm service'leri, cache'leri ve rate limiter'ları oluşturur.
// m nil olabilir (METRICS_ENABLED=false).
func initServices(
	db *sql.DB,
	repos *Repositories,
	hub ws.EventPublisher,
	sender email.Sender,
	m *metrics.Metrics,
	cfg *config.Config,
) (*Services, *RateLimiters, *Caches) {
	caches := &Caches{
		CategoryTree: cache.New[string, []models.Category](categoryTreeTTL, cacheCleanup),
		Settings:     cache.New[string, models.SystemSettings](settingsTTL, cacheCleanup),
	}

	// ─── Rate Limiters ───
	limiters := &RateLimiters{
		Login:  ratelimit.New(5, 2*time.Minute),
		Review: ratelimit.New(5, 10*time.Minute),
	}

	mail := services.NewMailDispatcher(sender)

	// ─── Ortak dependency'ler ───
	uploadService := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)
	settingsService := services.NewSettingsService(repos.Settings, uploadService, hub, caches.Settings)

	// ─── Katalog ───
	storeService := services.NewStoreService(repos.Store, repos.User, uploadService, hub)
	brandService := services.NewBrandService(repos.Brand, uploadService, hub)
	categoryService := services.NewCategoryService(db, repos.Category, uploadService, hub, caches.CategoryTree)
	productService := services.NewProductService(
		db, repos.Product, repos.Brand, storeService, categoryService, uploadService, hub,
	)
	reviewService := services.NewReviewService(db, repos.Review, repos.Order, productService, limiters.Review, hub)
	sectionService := services.NewSectionService(db, repos.Section, repos.Product, repos.Brand, categoryService, hub)

	// ─── Hesap, sepet, sipariş ───
	authService := services.NewAuthService(
		repos.User, repos.Session, repos.ResetToken, uploadService, mail, hub,
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
	)
	userService := services.NewUserService(repos.User, uploadService, hub)
	cartService := services.NewCartService(repos.Cart, repos.Product)
	orderService := services.NewOrderService(
		db, repos.Order, repos.User, repos.Store, settingsService, mail, hub, m,
	)
	statsService := services.NewStatsService(repos.Stats, repos.Order)

	svcs := &Services{
		Auth:     authService,
		Upload:   uploadService,
		User:     userService,
		Store:    storeService,
		Brand:    brandService,
		Category: categoryService,
		Product:  productService,
		Review:   reviewService,
		Cart:     cartService,
		Order:    orderService,
		Section:  sectionService,
		Settings: settingsService,
		Stats:    statsService,
		Mail:     mail,
	}

	return svcs, limiters, caches
}
