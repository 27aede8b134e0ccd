package models

import (
	"strings"
	"time"
)

// Review, bir kullanıcının ürüne verdiği puan ve yorum.
// (user_id, product_id) çifti unique'tir.
type Review struct {
	ID        string      `json:"id"`
	ProductID string      `json:"product_id"`
	UserID    string      `json:"user_id"`
	Rating    int         `json:"rating"`
	Comment   string      `json:"comment"`
	Author    UserSummary `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (r *CreateReviewRequest) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	return validateStruct(r)
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitnil,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitnil,max=2000"`
}

func (r *UpdateReviewRequest) Validate() error {
	trimPtr(r.Comment)
	return validateStruct(r)
}

// RatingSummary, ürün tablosundaki denormalize puan alanları.
type RatingSummary struct {
	Avg   float64 `json:"rating_avg"`
	Count int     `json:"rating_count"`
}
