package models

import "time"

// CartItem, sepetteki tek bir satırın DB kaydı.
type CartItem struct {
	UserID    string    `json:"-"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine, sepet satırının canlı ürün bilgisiyle zenginleştirilmiş hali.
// Fiyat sepete eklendiği anki değil, okunduğu andaki üründen gelir.
type CartLine struct {
	ProductID string  `json:"product_id"`
	StoreID   string  `json:"store_id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ImageURL  *string `json:"image_url"`
	UnitPrice int64   `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	IsActive  bool    `json:"is_active"`
	LineTotal int64   `json:"line_total"`
}

// Available, satırın checkout'a uygun olup olmadığı.
func (l *CartLine) Available() bool {
	return l.IsActive && l.Stock >= l.Quantity
}

// Cart, kullanıcının sepeti.
type Cart struct {
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
}

// NewCart, satırlardan toplamları hesaplar.
func NewCart(lines []CartLine) *Cart {
	c := &Cart{Items: lines}
	if c.Items == nil {
		c.Items = []CartLine{}
	}
	for i := range c.Items {
		l := &c.Items[i]
		l.LineTotal = l.UnitPrice * int64(l.Quantity)
		c.ItemCount += l.Quantity
		c.Subtotal += l.LineTotal
	}
	return c
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

// Validate, Quantity verilmezse 1 kabul edilir.
func (r *AddCartItemRequest) Validate() error {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	return validateStruct(r)
}

// SetCartQuantityRequest, satır miktarını doğrudan ayarlar. 0 satırı siler.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

func (r *SetCartQuantityRequest) Validate() error {
	return validateStruct(r)
}
