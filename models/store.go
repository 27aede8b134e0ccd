package models

import (
	"strings"
	"time"
)

// Store, bir satıcının (buyer) işlettiği mağaza.
type Store struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	LogoURL      *string   `json:"logo_url"`
	BannerURL    *string   `json:"banner_url"`
	IsActive     bool      `json:"is_active"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary, ürün kartlarına gömülen kısa mağaza bilgisi.
func (s *Store) Summary() *StoreSummary {
	return &StoreSummary{ID: s.ID, Name: s.Name, Slug: s.Slug, LogoURL: s.LogoURL}
}

// StoreSummary, başka kayıtlara gömülen mağaza özeti.
type StoreSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	LogoURL *string `json:"logo_url"`
}

// CreateStoreRequest, yeni mağaza oluşturma isteği.
// OwnerID sadece admin tarafından set edilebilir; buyer için yoksayılır.
type CreateStoreRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Slug        string  `json:"slug" validate:"required,max=120,slug"`
	Description string  `json:"description" validate:"max=2000"`
	OwnerID     *string `json:"owner_id"`
	IsActive    *bool   `json:"is_active"`
}

// Validate, CreateStoreRequest kontrolü. Slug verilmemişse isimden üretilir.
func (r *CreateStoreRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Slug = deriveSlug(r.Slug, r.Name)
	return validateStruct(r)
}

// UpdateStoreRequest, partial update — nil alanlar değişmez.
type UpdateStoreRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=2,max=100"`
	Slug        *string `json:"slug" validate:"omitnil,min=1,max=120,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// Validate, UpdateStoreRequest kontrolü.
func (r *UpdateStoreRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.Slug)
	trimPtr(r.Description)
	return validateStruct(r)
}

// StoreFilter, mağaza listesi filtreleri.
// OwnerID doluysa sadece o kullanıcının mağazaları döner (dashboard).
// IncludeInactive false ise storefront görünümüdür.
type StoreFilter struct {
	ListParams
	OwnerID         string
	IncludeInactive bool
}
