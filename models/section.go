package models

import (
	"errors"
	"strings"
	"time"
)

var errRefRequired = errors.New("ref_id is required for category and brand sections")

// SectionKind, ana sayfa bölümünün ürünlerini nereden aldığı.
type SectionKind string

const (
	SectionManual   SectionKind = "manual"   // admin'in seçtiği ürünler
	SectionFeatured SectionKind = "featured" // is_featured ürünler
	SectionNewest   SectionKind = "newest"
	SectionCategory SectionKind = "category" // RefID kategorisi (+alt kategoriler)
	SectionBrand    SectionKind = "brand"    // RefID markası
)

// NeedsRef, kind'ın RefID gerektirip gerektirmediği.
func (k SectionKind) NeedsRef() bool {
	return k == SectionCategory || k == SectionBrand
}

// Section, storefront ana sayfasındaki ürün şeridi.
type Section struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Kind       SectionKind `json:"kind"`
	RefID      *string     `json:"ref_id"`
	Position   int         `json:"position"`
	Limit      int         `json:"limit"`
	IsActive   bool        `json:"is_active"`
	ProductIDs []string    `json:"product_ids"`
	Products   []Product   `json:"products,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type CreateSectionRequest struct {
	Title    string  `json:"title" validate:"required,max=100"`
	Kind     string  `json:"kind" validate:"required,oneof=manual featured newest category brand"`
	RefID    *string `json:"ref_id"`
	Position int     `json:"position" validate:"gte=0"`
	Limit    int     `json:"limit" validate:"gte=0,lte=48"`
	IsActive *bool   `json:"is_active"`
}

func (r *CreateSectionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.RefID = nilIfBlank(r.RefID)
	if r.Limit == 0 {
		r.Limit = 12
	}
	if err := validateStruct(r); err != nil {
		return err
	}
	if SectionKind(r.Kind).NeedsRef() && r.RefID == nil {
		return errRefRequired
	}
	return nil
}

type UpdateSectionRequest struct {
	Title    *string `json:"title" validate:"omitnil,min=1,max=100"`
	RefID    *string `json:"ref_id"`
	Position *int    `json:"position" validate:"omitnil,gte=0"`
	Limit    *int    `json:"limit" validate:"omitnil,gte=1,lte=48"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateSectionRequest) Validate() error {
	trimPtr(r.Title)
	r.RefID = nilIfBlank(r.RefID)
	return validateStruct(r)
}

// SetSectionProductsRequest, manual bölümün ürün listesi (sıralı).
type SetSectionProductsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"max=48"`
}

func (r *SetSectionProductsRequest) Validate() error {
	return validateStruct(r)
}
