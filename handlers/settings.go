package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// SettingsHandler, mağaza geneli ayarlar. Okuma public (storefront başlığı,
// para birimi, kargo ücreti), yazma admin.
type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get godoc
// GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, settings)
}

// Update godoc
// PATCH /api/manage/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.settingsService.Update(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, settings)
}

// UploadLogo godoc
// POST /api/manage/settings/logo
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	settings, err := h.settingsService.UpdateLogo(r.Context(), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, settings)
}
