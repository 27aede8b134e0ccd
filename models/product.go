package models

import (
	"strings"
	"time"
)

// LowStockThreshold, stok bu değere düştüğünde dashboard'a uyarı event'i gider.
const LowStockThreshold = 5

// MaxProductImages, bir ürüne eklenebilecek en fazla görsel sayısı.
const MaxProductImages = 8

// Product, satışa sunulan ürün.
//
// Fiyatlar minor unit (kuruş/cent) cinsinden int64 tutulur — float ile para
// hesabı yuvarlama hatası üretir.
type Product struct {
	ID             string           `json:"id"`
	StoreID        string           `json:"store_id"`
	BrandID        *string          `json:"brand_id"`
	CategoryID     *string          `json:"category_id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	SKU            *string          `json:"sku"`
	Description    string           `json:"description"`
	Price          int64            `json:"price"`
	CompareAtPrice *int64           `json:"compare_at_price"`
	Stock          int              `json:"stock"`
	IsActive       bool             `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
	RatingAvg      float64          `json:"rating_avg"`
	RatingCount    int              `json:"rating_count"`
	SoldCount      int              `json:"sold_count"`
	Images         []ProductImage   `json:"images"`
	Store          *StoreSummary    `json:"store,omitempty"`
	Brand          *BrandSummary    `json:"brand,omitempty"`
	Category       *CategorySummary `json:"category,omitempty"`
	StoreActive    bool             `json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// InStock kısayolu.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Purchasable, ürünün storefront'ta satılabilir olup olmadığı:
// ürün ve mağazası aktif olmalı.
func (p *Product) Purchasable() bool {
	return p.IsActive && p.StoreActive
}

// ProductImage, ürün görseli. Position 0'dan başlar, küçük olan önce gelir.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

// CreateProductRequest, yeni ürün isteği.
type CreateProductRequest struct {
	StoreID        string  `json:"store_id" validate:"required"`
	BrandID        *string `json:"brand_id"`
	CategoryID     *string `json:"category_id"`
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	Slug           string  `json:"slug" validate:"required,max=220,slug"`
	SKU            *string `json:"sku" validate:"omitempty,max=64"`
	Description    string  `json:"description" validate:"max=10000"`
	Price          int64   `json:"price" validate:"gte=0"`
	CompareAtPrice *int64  `json:"compare_at_price" validate:"omitempty,gte=0"`
	Stock          int     `json:"stock" validate:"gte=0"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     bool    `json:"is_featured"`
}

func (r *CreateProductRequest) Validate() error {
	r.StoreID = strings.TrimSpace(r.StoreID)
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Slug = deriveSlug(r.Slug, r.Name)
	trimPtr(r.SKU)
	r.BrandID = nilIfBlank(r.BrandID)
	r.CategoryID = nilIfBlank(r.CategoryID)
	r.SKU = nilIfBlank(r.SKU)
	return validateStruct(r)
}

// UpdateProductRequest, partial update. Brand/Category için "null gönderildi"
// ile "hiç gönderilmedi" ayrımı Set* bayraklarıyla yapılır.
type UpdateProductRequest struct {
	BrandID        *string `json:"brand_id"`
	SetBrand       bool    `json:"-"`
	CategoryID     *string `json:"category_id"`
	SetCategory    bool    `json:"-"`
	Name           *string `json:"name" validate:"omitnil,min=1,max=200"`
	Slug           *string `json:"slug" validate:"omitnil,min=1,max=220,slug"`
	SKU            *string `json:"sku" validate:"omitempty,max=64"`
	Description    *string `json:"description" validate:"omitempty,max=10000"`
	Price          *int64  `json:"price" validate:"omitempty,gte=0"`
	CompareAtPrice *int64  `json:"compare_at_price" validate:"omitempty,gte=0"`
	Stock          *int    `json:"stock" validate:"omitempty,gte=0"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     *bool   `json:"is_featured"`
}

func (r *UpdateProductRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.Slug)
	trimPtr(r.SKU)
	trimPtr(r.Description)
	r.BrandID = nilIfBlank(r.BrandID)
	r.CategoryID = nilIfBlank(r.CategoryID)
	return validateStruct(r)
}

// ReorderImagesRequest, görsellerin yeni sırası (tüm görsel ID'leri).
type ReorderImagesRequest struct {
	ImageIDs []string `json:"image_ids" validate:"required,min=1,max=8"`
}

func (r *ReorderImagesRequest) Validate() error {
	return validateStruct(r)
}

// Ürün sıralama seçenekleri.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
	SortPopular   = "popular"
)

// ProductFilter, ürün listesi filtreleri.
//
// CategoryIDs servis katmanında doldurulur: istenen kategori + tüm alt kategorileri.
// Public true ise sadece aktif ürünler ve aktif mağazalar görünür.
type ProductFilter struct {
	ListParams
	CategoryIDs []string
	BrandID     string
	StoreID     string
	OwnerID     string // dashboard: sadece bu kullanıcının mağazalarının ürünleri
	MinPrice    *int64
	MaxPrice    *int64
	InStock     bool
	Featured    bool
	Public      bool
	ExcludeID   string
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
