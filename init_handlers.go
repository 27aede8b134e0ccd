// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/handlers"
	"github.com/akinalp/pazar/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Store    *handlers.StoreHandler
	Brand    *handlers.BrandHandler
	Category *handlers.CategoryHandler
	Product  *handlers.ProductHandler
	Review   *handlers.ReviewHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Section  *handlers.SectionHandler
	Settings *handlers.SettingsHandler
	Stats    *handlers.StatsHandler
	WS       *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		User:     handlers.NewUserHandler(svcs.User),
		Store:    handlers.NewStoreHandler(svcs.Store),
		Brand:    handlers.NewBrandHandler(svcs.Brand),
		Category: handlers.NewCategoryHandler(svcs.Category),
		Product:  handlers.NewProductHandler(svcs.Product),
		Review:   handlers.NewReviewHandler(svcs.Review),
		Cart:     handlers.NewCartHandler(svcs.Cart),
		Order:    handlers.NewOrderHandler(svcs.Order),
		Section:  handlers.NewSectionHandler(svcs.Section),
		Settings: handlers.NewSettingsHandler(svcs.Settings),
		Stats:    handlers.NewStatsHandler(svcs.Stats),
		WS:       ws.NewHandler(hub, svcs.Auth, cfg.Server.AllowedOrigins),
	}
}
