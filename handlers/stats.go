package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// StatsHandler, dashboard ana sayfasındaki özet kartlar.
type StatsHandler struct {
	statsService services.StatsService
}

// NewStatsHandler, constructor. main.go'da wire-up edilir.
func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Dashboard godoc
// GET /api/manage/stats
// Admin için sistem geneli; buyer için kendi mağazalarıyla sınırlı.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.statsService.Dashboard(r.Context(), user)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, stats)
}
