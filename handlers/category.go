package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// CategoryHandler, kategori endpoint'lerini yöneten struct.
type CategoryHandler struct {
	categoryService services.CategoryService
}

// NewCategoryHandler, constructor.
func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// GET /api/categories?q=&page=&limit=
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	categories, total, err := h.categoryService.List(r.Context(), params)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, categories, params, total)
}

// Tree godoc
// GET /api/categories/tree
// Storefront menüsü: kök kategoriler ve iç içe children.
func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categoryService.Tree(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	if tree == nil {
		tree = []*models.Category{}
	}
	pkg.JSON(w, http.StatusOK, tree)
}

// Get godoc
// GET /api/categories/{idOrSlug}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.Get(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, category)
}

// Create godoc
// POST /api/manage/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, category)
}

// Update godoc
// PATCH /api/manage/categories/{id}
//
// "parent_id": null → kök kategoriye taşı; alan hiç yoksa parent değişmez.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCategoryRequest
	keys, ok := decodeJSONKeys(w, r, &req)
	if !ok {
		return
	}
	_, req.SetParent = keys["parent_id"]

	category, err := h.categoryService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, category)
}

// Delete godoc
// DELETE /api/manage/categories/{id}
// Alt kategoriler silinen kategorinin parent'ına taşınır.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categoryService.Delete(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	message(w, "category deleted")
}

// UploadImage godoc
// POST /api/manage/categories/{id}/image
func (h *CategoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	category, err := h.categoryService.UpdateImage(r.Context(), r.PathValue("id"), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, category)
}
