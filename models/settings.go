package models

import (
	"strconv"
	"strings"
)

// Settings anahtarları — system_settings tablosundaki key kolonları.
const (
	SettingSiteName              = "site_name"
	SettingLogoURL               = "logo_url"
	SettingCurrency              = "currency"
	SettingContactEmail          = "contact_email"
	SettingShippingFee           = "shipping_fee"
	SettingFreeShippingThreshold = "free_shipping_threshold"
	SettingTaxRateBPS            = "tax_rate_bps"
	SettingMaintenanceMode       = "maintenance_mode"
)

// SystemSettings, mağaza genelindeki tekil ayarlar.
// DB'de key/value satırları olarak tutulur, bu struct'a toplanır.
type SystemSettings struct {
	SiteName              string  `json:"site_name"`
	LogoURL               *string `json:"logo_url"`
	Currency              string  `json:"currency"`
	ContactEmail          string  `json:"contact_email"`
	ShippingFee           int64   `json:"shipping_fee"`
	FreeShippingThreshold int64   `json:"free_shipping_threshold"`
	TaxRateBPS            int     `json:"tax_rate_bps"`
	MaintenanceMode       bool    `json:"maintenance_mode"`
}

// DefaultSettings, hiç kayıt yokken kullanılan değerler.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		SiteName:              "Pazar",
		Currency:              "TRY",
		ShippingFee:           4990,
		FreeShippingThreshold: 50000,
		TaxRateBPS:            0,
	}
}

// SettingsFromMap, key/value satırlarını varsayılanların üzerine uygular.
// Parse edilemeyen değerler yoksayılır, varsayılan kalır.
func SettingsFromMap(kv map[string]string) SystemSettings {
	s := DefaultSettings()
	if v, ok := kv[SettingSiteName]; ok && v != "" {
		s.SiteName = v
	}
	if v, ok := kv[SettingLogoURL]; ok && v != "" {
		s.LogoURL = &v
	}
	if v, ok := kv[SettingCurrency]; ok && v != "" {
		s.Currency = v
	}
	if v, ok := kv[SettingContactEmail]; ok {
		s.ContactEmail = v
	}
	if n, err := strconv.ParseInt(kv[SettingShippingFee], 10, 64); err == nil {
		s.ShippingFee = n
	}
	if n, err := strconv.ParseInt(kv[SettingFreeShippingThreshold], 10, 64); err == nil {
		s.FreeShippingThreshold = n
	}
	if n, err := strconv.Atoi(kv[SettingTaxRateBPS]); err == nil {
		s.TaxRateBPS = n
	}
	if b, err := strconv.ParseBool(kv[SettingMaintenanceMode]); err == nil {
		s.MaintenanceMode = b
	}
	return s
}

// ToMap, SystemSettings'i DB'ye yazılacak key/value çiftlerine çevirir.
func (s SystemSettings) ToMap() map[string]string {
	logo := ""
	if s.LogoURL != nil {
		logo = *s.LogoURL
	}
	return map[string]string{
		SettingSiteName:              s.SiteName,
		SettingLogoURL:               logo,
		SettingCurrency:              s.Currency,
		SettingContactEmail:          s.ContactEmail,
		SettingShippingFee:           strconv.FormatInt(s.ShippingFee, 10),
		SettingFreeShippingThreshold: strconv.FormatInt(s.FreeShippingThreshold, 10),
		SettingTaxRateBPS:            strconv.Itoa(s.TaxRateBPS),
		SettingMaintenanceMode:       strconv.FormatBool(s.MaintenanceMode),
	}
}

// UpdateSettingsRequest, partial update.
type UpdateSettingsRequest struct {
	SiteName              *string `json:"site_name" validate:"omitnil,min=1,max=100"`
	Currency              *string `json:"currency" validate:"omitnil,iso4217"`
	ContactEmail          *string `json:"contact_email" validate:"omitempty,email"`
	ShippingFee           *int64  `json:"shipping_fee" validate:"omitnil,gte=0"`
	FreeShippingThreshold *int64  `json:"free_shipping_threshold" validate:"omitnil,gte=0"`
	TaxRateBPS            *int    `json:"tax_rate_bps" validate:"omitnil,gte=0,lte=10000"`
	MaintenanceMode       *bool   `json:"maintenance_mode"`
}

func (r *UpdateSettingsRequest) Validate() error {
	trimPtr(r.SiteName)
	trimPtr(r.ContactEmail)
	if r.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*r.Currency))
		r.Currency = &c
	}
	return validateStruct(r)
}

// Apply, request'teki dolu alanları s'ye uygular.
func (r *UpdateSettingsRequest) Apply(s *SystemSettings) {
	if r.SiteName != nil {
		s.SiteName = *r.SiteName
	}
	if r.Currency != nil {
		s.Currency = *r.Currency
	}
	if r.ContactEmail != nil {
		s.ContactEmail = *r.ContactEmail
	}
	if r.ShippingFee != nil {
		s.ShippingFee = *r.ShippingFee
	}
	if r.FreeShippingThreshold != nil {
		s.FreeShippingThreshold = *r.FreeShippingThreshold
	}
	if r.TaxRateBPS != nil {
		s.TaxRateBPS = *r.TaxRateBPS
	}
	if r.MaintenanceMode != nil {
		s.MaintenanceMode = *r.MaintenanceMode
	}
}
