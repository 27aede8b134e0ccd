package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// StoreHandler, mağaza endpoint'leri. Storefront tarafı public,
// /api/manage altı buyer/admin içindir.
type StoreHandler struct {
	storeService services.StoreService
}

func NewStoreHandler(storeService services.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// List godoc
// GET /api/stores?q=&sort=&page=&limit=
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	stores, total, err := h.storeService.List(r.Context(), params)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, stores, params, total)
}

// Get godoc
// GET /api/stores/{idOrSlug}
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.storeService.Get(r.Context(), r.PathValue("idOrSlug"), true)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, store)
}

// ListManaged godoc
// GET /api/manage/stores
func (h *StoreHandler) ListManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	params := listParams(r)
	stores, total, err := h.storeService.ListManaged(r.Context(), user, params)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, stores, params, total)
}

// GetManaged godoc
// GET /api/manage/stores/{id}
func (h *StoreHandler) GetManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	store, err := h.storeService.Authorize(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, store)
}

// Create godoc
// POST /api/manage/stores
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, err := h.storeService.Create(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, store)
}

// Update godoc
// PATCH /api/manage/stores/{id}
func (h *StoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, err := h.storeService.Update(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, store)
}

// Delete godoc
// DELETE /api/manage/stores/{id}
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.storeService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "store deleted")
}

// UploadLogo godoc
// POST /api/manage/stores/{id}/logo
func (h *StoreHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.storeService.UpdateLogo)
}

// UploadBanner godoc
// POST /api/manage/stores/{id}/banner
func (h *StoreHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.storeService.UpdateBanner)
}

type storeImageFunc func(ctx context.Context, actor *models.User, id string, file multipart.File, header *multipart.FileHeader) (*models.Store, error)

func (h *StoreHandler) upload(w http.ResponseWriter, r *http.Request, save storeImageFunc) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	store, err := save(r.Context(), user, r.PathValue("id"), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, store)
}
