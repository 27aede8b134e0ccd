package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// SectionHandler, ana sayfa bölümleri.
type SectionHandler struct {
	sectionService services.SectionService
}

func NewSectionHandler(sectionService services.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// ListPublic godoc
// GET /api/sections
// Aktif bölümler, ürünleri çözülmüş halde.
func (h *SectionHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionService.ListPublic(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, sections)
}

// ListAll godoc
// GET /api/manage/sections
func (h *SectionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionService.ListAll(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	if sections == nil {
		sections = []models.Section{}
	}
	pkg.JSON(w, http.StatusOK, sections)
}

// Get godoc
// GET /api/manage/sections/{id}
func (h *SectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	section, err := h.sectionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, section)
}

// Create godoc
// POST /api/manage/sections
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	section, err := h.sectionService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, section)
}

// Update godoc
// PATCH /api/manage/sections/{id}
func (h *SectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	section, err := h.sectionService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, section)
}

// Delete godoc
// DELETE /api/manage/sections/{id}
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sectionService.Delete(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "section deleted")
}

// SetProducts godoc
// PUT /api/manage/sections/{id}/products
// Body: { "product_ids": ["...", "..."] } — sıra korunur.
func (h *SectionHandler) SetProducts(w http.ResponseWriter, r *http.Request) {
	var req models.SetSectionProductsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	section, err := h.sectionService.SetProducts(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, section)
}
