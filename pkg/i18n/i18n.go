// Package i18n, backend'in kullanıcıya giden metinlerini (email konu ve
// gövdeleri, sipariş durum isimleri) çevirir.
//
// Dil sırası: kullanıcının DB'deki language tercihi → Accept-Language → "en".
//
//	bundle, _ := i18n.Load(i18n.Locales())
//	loc := bundle.Localizer("tr")
//	loc.T("order.status.shipped") // → "Kargoya verildi"
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
)

// SupportedLanguages — desteklenen dil kodları. Her biri için locales/<kod>.json olmalı.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage — bulunamayan anahtarlar için fallback dili.
const DefaultLanguage = "en"

// Bundle, tüm dillerin düzleştirilmiş çevirileri.
// Load sonrası sadece okunur — goroutine'ler arasında paylaşılabilir.
type Bundle struct {
	translations map[string]map[string]string
}

// Load, localesFS'teki <lang>.json dosyalarını yükler.
// Nested JSON nokta notasyonuna çevrilir: {"order": {"status": {"pending": "..."}}}
// → "order.status.pending".
func Load(localesFS fs.FS) (*Bundle, error) {
	b := &Bundle{translations: make(map[string]map[string]string)}

	for _, lang := range SupportedLanguages {
		fileName := lang + ".json"
		data, err := fs.ReadFile(localesFS, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", fileName, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
		}

		flat := make(map[string]string)
		flattenMap("", nested, flat)
		b.translations[lang] = flat

		log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
	}

	return b, nil
}

// Localizer, tek bir dile bağlı çevirmen.
type Localizer struct {
	bundle *Bundle
	lang   string
}

// Localizer, lang için Localizer döner; desteklenmeyen dil varsayılana düşer.
func (b *Bundle) Localizer(lang string) *Localizer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{bundle: b, lang: lang}
}

// Lang, Localizer'ın çözümlenmiş dil kodu.
func (l *Localizer) Lang() string {
	return l.lang
}

// T, anahtarın çevirisi. Kullanıcının dilinde yoksa İngilizce'ye,
// orada da yoksa anahtarın kendisine düşer.
func (l *Localizer) T(key string) string {
	if l.bundle != nil {
		if msg, ok := l.bundle.translations[l.lang][key]; ok {
			return msg
		}
		if msg, ok := l.bundle.translations[DefaultLanguage][key]; ok {
			return msg
		}
	}
	return key
}

// TWithParams, {{param}} yer tutucularını doldurur.
//
//	loc.TWithParams("email.order.subject", map[string]string{"number": "PZ-1A2B3C4D"})
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage, Accept-Language header'ından ilk desteklenen dili seçer.
// "tr-TR,tr;q=0.9,en;q=0.8" → "tr"
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		if lang := strings.ToLower(base); isSupported(lang) {
			return lang
		}
	}
	return DefaultLanguage
}

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
