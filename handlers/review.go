package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// ReviewHandler, ürün yorumları.
type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// GET /api/products/{idOrSlug}/reviews?page=&limit=
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	reviews, total, err := h.reviewService.ListByProduct(r.Context(), r.PathValue("idOrSlug"), params)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, reviews, params, total)
}

// Create godoc
// POST /api/products/{idOrSlug}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.reviewService.Create(r.Context(), user, r.PathValue("idOrSlug"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, review)
}

// Update godoc
// PATCH /api/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.reviewService.Update(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, review)
}

// Delete godoc
// DELETE /api/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "review deleted")
}
