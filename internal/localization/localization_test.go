package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizer_GetString(t *testing.T) {
	fsys := fstest.MapFS{
		"i18n/en.json":    {Data: []byte(`{"greeting":"Hello","only_en":"English only"}`)},
		"i18n/pt.json":    {Data: []byte(`{"greeting":"Olá"}`)},
		"i18n/README.txt": {Data: []byte(`ignored`)},
	}

	l, err := NewLocalizer(fsys, "i18n")
	require.NoError(t, err)

	assert.Equal(t, "Olá", l.GetString("pt", "greeting"))
	assert.Equal(t, "English only", l.GetString("pt", "only_en"))
	assert.Equal(t, "Hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing", l.GetString("pt", "missing"))
	assert.True(t, l.HasLanguage("pt"))
	assert.False(t, l.HasLanguage("README"))
}

func TestNewLocalizer_Errors(t *testing.T) {
	_, err := NewLocalizer(fstest.MapFS{}, "absent")
	assert.Error(t, err)

	_, err = NewLocalizer(fstest.MapFS{"i18n/en.json": {Data: []byte(`{`)}}, "i18n")
	assert.Error(t, err)
}

func TestNewBundled(t *testing.T) {
	l, err := NewBundled()
	require.NoError(t, err)

	assert.True(t, l.HasLanguage("en"))
	assert.True(t, l.HasLanguage("pt"))
	assert.Equal(t, "⛔ O usuário #4 foi banido.", l.Format("pt", "alert.user_banned", 4))
	// pt не має ключа unknown_event, тому береться англійський текст.
	assert.Equal(t, "ℹ️ Event chat", l.Format("pt", "alert.unknown_event", "chat"))
}
