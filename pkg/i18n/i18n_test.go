package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedLocales(t *testing.T) {
	b, err := Load(Locales())
	require.NoError(t, err)

	tr := b.Localizer("tr")
	assert.Equal(t, "Kargoya verildi", tr.T("order.status.shipped"))
	assert.Equal(t, "Shipped", b.Localizer("en").T("order.status.shipped"))
	assert.Equal(t, "en", b.Localizer("de").Lang(), "desteklenmeyen dil varsayılana düşer")
}

func TestLocalizer_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"a": {"b": "only english"}, "hello": "Hi {{name}}"}`)},
		"tr.json": {Data: []byte(`{"hello": "Merhaba {{name}}"}`)},
	}
	b, err := Load(fsys)
	require.NoError(t, err)

	tr := b.Localizer("TR")
	assert.Equal(t, "only english", tr.T("a.b"))
	assert.Equal(t, "missing.key", tr.T("missing.key"))
	assert.Equal(t, "Merhaba Ayşe", tr.TWithParams("hello", map[string]string{"name": "Ayşe"}))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(fstest.MapFS{"en.json": {Data: []byte(`{}`)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tr.json")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "tr", DetectLanguage("tr-TR,tr;q=0.9,en-US;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("de-DE, en;q=0.5"))
	assert.Equal(t, "en", DetectLanguage(""))
	assert.Equal(t, "en", DetectLanguage("fr"))
}
