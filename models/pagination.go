package models

import "strings"

// Sayfalama varsayılanları. Limit üst sınırı, tek istekte tüm kataloğun
// çekilmesini engeller.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListParams, tüm liste endpoint'lerinin ortak query parametreleri.
//
// Storefront'taki markalar/kategoriler/mağazalar sayfaları eskiden listeyi
// client'ta filtreleyip sıralıyordu; artık q ve sort sunucuya gönderilir.
type ListParams struct {
	Query string
	Sort  string
	Page  int
	Limit int
}

// Normalize, eksik veya sınır dışı değerleri varsayılanlara çeker.
func (p *ListParams) Normalize() {
	p.Query = strings.TrimSpace(p.Query)
	p.Sort = strings.ToLower(strings.TrimSpace(p.Sort))
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Offset, SQL OFFSET değeri.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// LikePattern, Query'yi SQL LIKE pattern'ine çevirir (%q%).
// % ve _ karakterleri escape edilir; sorgularda ESCAPE '\' kullanılmalı.
func (p ListParams) LikePattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(p.Query)) + "%"
}
