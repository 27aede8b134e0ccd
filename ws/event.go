// Package ws, dashboard ve storefront'a gerçek zamanlı bildirim gönderir.
//
// - Hub: tüm bağlantıları kullanıcı ve rol bazında tutar
// - Client: tek bir WebSocket bağlantısı (bir kullanıcının birden fazla sekmesi olabilir)
// - Event: {"op": "...", "d": {...}, "seq": N} formatındaki mesaj
//
// Akış: admin ürünü günceller → ProductService DB'ye yazar → Hub'a
// catalog_invalidate yayınlar → açık olan storefront/dashboard sekmeleri
// ilgili listeleri yeniden çeker.
package ws

import "time"

// Event, WebSocket üzerinden iletilen mesaj.
// Seq her outbound event'te artar; client boşluk görürse tam yenileme yapar.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server
const (
	OpHeartbeat = "heartbeat" // client her 30sn'de gönderir
)

// Server → Client
const (
	OpReady             = "ready"
	OpHeartbeatAck      = "heartbeat_ack"
	OpOrderCreate       = "order_create"
	OpOrderUpdate       = "order_update"
	OpProductStockLow   = "product_stock_low"
	OpCatalogInvalidate = "catalog_invalidate"
)

// catalog_invalidate tag'leri — client'taki cache anahtarlarıyla aynı isimler.
const (
	TagProducts   = "products"
	TagBrands     = "brands"
	TagCategories = "categories"
	TagStores     = "stores"
	TagSections   = "sections"
	TagSettings   = "settings"
	TagReviews    = "reviews"
)

// ReadyData, bağlantı kurulunca gönderilen ilk event'in payload'ı.
type ReadyData struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	ServerTime time.Time `json:"server_time"`
}

// CatalogInvalidateData, hangi listelerin bayatladığını söyler.
// ID doluysa tek bir kayıt değişmiştir (ör. ürün detay sayfası).
type CatalogInvalidateData struct {
	Tags []string `json:"tags"`
	ID   string   `json:"id,omitempty"`
}

// StockLowData, checkout sonrası stoğu eşik altına düşen ürün.
type StockLowData struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// OrderEventData, order_create ve order_update payload'ı.
// Tam sipariş gönderilmez: buyer başka mağazaların kalemlerini görmemeli.
// Client ihtiyaç duyarsa detayı kendi yetkisiyle çeker.
type OrderEventData struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// CatalogInvalidate, catalog_invalidate event'i oluşturur.
func CatalogInvalidate(id string, tags ...string) Event {
	return Event{Op: OpCatalogInvalidate, Data: CatalogInvalidateData{Tags: tags, ID: id}}
}
