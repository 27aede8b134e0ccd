package middleware

import (
	"log"
	"net/http"

	"github.com/akinalp/pazar/handlers"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// Maintenance, maintenance_mode ayarı açıkken storefront route'larını
// 503 ile kapatır. Admin'ler (Optional/Require ile context'e eklenmişse)
// mağazayı gezmeye ve test siparişi vermeye devam eder.
//
// /api/settings bu middleware ile SARILMAZ — storefront bakım sayfasını
// göstermek için ayarları okuyabilmeli.
type Maintenance struct {
	settings services.SettingsService
}

func NewMaintenance(settings services.SettingsService) *Maintenance {
	return &Maintenance{settings: settings}
}

func (m *Maintenance) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := m.settings.Get(r.Context())
		if err != nil {
			// Ayar okunamıyorsa mağazayı kapatmak yerine devam et.
			log.Printf("[maintenance] failed to read settings: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if settings.MaintenanceMode {
			user, _ := r.Context().Value(handlers.UserContextKey).(*models.User)
			if user == nil || !user.IsAdmin() {
				w.Header().Set("Retry-After", "600")
				pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "store is under maintenance")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
