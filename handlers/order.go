package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// OrderHandler, müşteri siparişleri (/api/orders) ve dashboard sipariş
// yönetimi (/api/manage/orders).
type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// orderFilter, ?status=&page=&limit= — bilinmeyen status 400 döner.
func orderFilter(w http.ResponseWriter, r *http.Request) (models.OrderFilter, bool) {
	filter := models.OrderFilter{
		ListParams: listParams(r),
		Status:     models.OrderStatus(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "unknown order status")
		return filter, false
	}
	return filter, true
}

// Checkout godoc
// POST /api/orders
// Sepetteki tüm ürünlerden tek sipariş oluşturur; sepet boşaltılır.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.Checkout(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, order)
}

// ListMine godoc
// GET /api/orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, ok := orderFilter(w, r)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListMine(r.Context(), user.ID, filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, orders, filter.ListParams, total)
}

// GetMine godoc
// GET /api/orders/{id}
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetMine(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, order)
}

// CancelMine godoc
// POST /api/orders/{id}/cancel
func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.CancelMine(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, order)
}

// ListManaged godoc
// GET /api/manage/orders
func (h *OrderHandler) ListManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, ok := orderFilter(w, r)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListManaged(r.Context(), user, filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, orders, filter.ListParams, total)
}

// GetManaged godoc
// GET /api/manage/orders/{id}
func (h *OrderHandler) GetManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetManaged(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, order)
}

// UpdateStatus godoc
// PATCH /api/manage/orders/{id}/status
// Body: { "status": "shipped" }
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, order)
}
