package models

import (
	"strings"
	"time"
)

// OrderStatus, siparişin yaşam döngüsündeki durumu.
//
//	pending → confirmed → shipped → delivered
//	pending | confirmed → cancelled
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions, her durumdan geçilebilecek durumlar.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// Valid, durumun tanımlı olup olmadığı.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo, s → next geçişinin izinli olup olmadığını döner.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal, delivered ve cancelled terminal durumlardır.
func (s OrderStatus) IsFinal() bool {
	return len(orderTransitions[s]) == 0
}

// ShippingAddress, teslimat adresi. Sipariş satırına JSON olarak gömülmez,
// ayrı kolonlarda tutulur.
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"required,max=64"`
}

func (a *ShippingAddress) normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
}

// Order, tamamlanmış bir checkout.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id"`
	Customer        *UserSummary    `json:"customer,omitempty"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	ShippingFee     int64           `json:"shipping_fee"`
	Tax             int64           `json:"tax"`
	Total           int64           `json:"total"`
	Currency        string          `json:"currency"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Note            string          `json:"note"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem, sipariş anındaki ürün snapshot'ı. Ürün sonradan silinse veya
// fiyatı değişse bile sipariş geçmişi bozulmaz — ProductID bu yüzden nullable.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   *string `json:"product_id"`
	StoreID     string  `json:"store_id"`
	ProductName string  `json:"product_name"`
	ImageURL    *string `json:"image_url"`
	UnitPrice   int64   `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   int64   `json:"line_total"`
}

// OrderTotals, checkout fiyat dökümü.
type OrderTotals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// ComputeTotals, ara toplamdan kargo ve vergiyi hesaplar.
//
// Kargo: FreeShippingThreshold > 0 ve subtotal >= eşik ise ücretsiz.
// Vergi: subtotal * TaxRateBPS / 10000 (basis point; 1800 = %18), aşağı yuvarlanır.
func ComputeTotals(subtotal int64, s *SystemSettings) OrderTotals {
	t := OrderTotals{Subtotal: subtotal}
	if subtotal > 0 {
		t.ShippingFee = s.ShippingFee
		if s.FreeShippingThreshold > 0 && subtotal >= s.FreeShippingThreshold {
			t.ShippingFee = 0
		}
	}
	t.Tax = subtotal * int64(s.TaxRateBPS) / 10000
	t.Total = t.Subtotal + t.ShippingFee + t.Tax
	return t
}

// CheckoutRequest, sepetten sipariş oluşturma isteği.
type CheckoutRequest struct {
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	Note            string          `json:"note" validate:"max=1000"`
}

func (r *CheckoutRequest) Validate() error {
	r.ShippingAddress.normalize()
	r.Note = strings.TrimSpace(r.Note)
	return validateStruct(r)
}

// UpdateOrderStatusRequest, admin/buyer durum değişikliği.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	return validateStruct(r)
}

// OrderFilter, sipariş listesi filtreleri.
// UserID: müşterinin kendi siparişleri. StoreOwnerID: buyer'ın mağazalarına ait siparişler.
type OrderFilter struct {
	ListParams
	Status       OrderStatus
	UserID       string
	StoreOwnerID string
}
