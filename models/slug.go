package models

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Türkçe ve yaygın Latin aksanlı harflerin ASCII karşılıkları.
var slugReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
	"â", "a", "î", "i", "û", "u",
	"é", "e", "è", "e", "á", "a", "à", "a", "ñ", "n", "ß", "ss",
)

// Slugify, bir ismi URL'de kullanılabilir slug'a çevirir.
//
//	"Çiçek Bahçesi & Co." → "cicek-bahcesi-co"
//
// Harf/rakam dışındaki her dizi tek bir tire olur, baş/sondaki tireler atılır.
func Slugify(s string) string {
	s = slugReplacer.Replace(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// deriveSlug, verilen slug boşsa isimden üretir. İsimde hiç Latin harf/rakam
// yoksa ("日本" gibi) kısa rastgele bir slug döner; boş slug unique index'te
// tüm bu kayıtları çakıştırırdı.
func deriveSlug(slug, name string) string {
	slug = strings.TrimSpace(slug)
	if slug != "" {
		return slug
	}
	if slug = Slugify(name); slug != "" {
		return slug
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
