package models

import (
	"strings"
	"time"
)

// Brand, ürün markası.
type Brand struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	LogoURL      *string   `json:"logo_url"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// BrandSummary, ürünlere gömülen marka özeti.
type BrandSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CreateBrandRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Slug        string `json:"slug" validate:"required,max=120,slug"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *CreateBrandRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Slug = deriveSlug(r.Slug, r.Name)
	return validateStruct(r)
}

type UpdateBrandRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitnil,min=1,max=120,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (r *UpdateBrandRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.Slug)
	trimPtr(r.Description)
	return validateStruct(r)
}
