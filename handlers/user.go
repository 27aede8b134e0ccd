package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// UserHandler, admin kullanıcı yönetimi (/api/manage/users).
// Route katmanında RequireRole(admin) ile sarılır.
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// GET /api/manage/users?q=&role=&page=&limit=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.UserFilter{
		ListParams: listParams(r),
		Role:       models.UserRole(r.URL.Query().Get("role")),
	}

	users, total, err := h.userService.List(r.Context(), filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, users, filter.ListParams, total)
}

// Get godoc
// GET /api/manage/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}

// UpdateRole godoc
// PATCH /api/manage/users/{id}/role
// Body: { "role": "buyer" }
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}

// Delete godoc
// DELETE /api/manage/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "user deleted")
}
