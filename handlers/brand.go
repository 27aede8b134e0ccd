package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// BrandHandler, marka endpoint'leri. Yazma işlemleri admin'e açıktır.
type BrandHandler struct {
	brandService services.BrandService
}

func NewBrandHandler(brandService services.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

// List godoc
// GET /api/brands?q=&sort=&page=&limit=
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	brands, total, err := h.brandService.List(r.Context(), params)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, brands, params, total)
}

// Get godoc
// GET /api/brands/{idOrSlug}
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	brand, err := h.brandService.Get(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, brand)
}

// Create godoc
// POST /api/manage/brands
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	brand, err := h.brandService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, brand)
}

// Update godoc
// PATCH /api/manage/brands/{id}
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	brand, err := h.brandService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, brand)
}

// Delete godoc
// DELETE /api/manage/brands/{id}
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.brandService.Delete(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "brand deleted")
}

// UploadLogo godoc
// POST /api/manage/brands/{id}/logo
func (h *BrandHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	brand, err := h.brandService.UpdateLogo(r.Context(), r.PathValue("id"), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, brand)
}
