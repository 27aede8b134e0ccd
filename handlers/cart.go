package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// CartHandler, oturum açmış kullanıcının sepeti. Her yazma işlemi güncel
// sepeti döner — client ayrıca GET atmaz.
type CartHandler struct {
	cartService services.CartService
}

func NewCartHandler(cartService services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, cart)
}

// Add godoc
// POST /api/cart/items
// Body: { "product_id": "...", "quantity": 2 }
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.cartService.Add(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, cart)
}

// SetQuantity godoc
// PUT /api/cart/items/{productId}
// Body: { "quantity": 3 } — 0 satırı siler.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SetCartQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.cartService.SetQuantity(r.Context(), user.ID, r.PathValue("productId"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, cart)
}

// Remove godoc
// DELETE /api/cart/items/{productId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(r.Context(), user.ID, r.PathValue("productId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, cart)
}

// Clear godoc
// DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), user.ID); err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, models.NewCart(nil))
}
