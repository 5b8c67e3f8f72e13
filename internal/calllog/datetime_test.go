package calllog

import (
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const sampleMillis = 1700000000123 // 2023-11-14T22:13:20.123Z

func TestDateFormatter_Locales(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "Nov 14, 2023, 10:13:20 PM"},
		{"en_GB.UTF-8", "14 Nov 2023, 22:13:20"},
		{"de-DE", "14.11.2023, 22:13:20"},
		{"de_AT@euro", "14.11.2023, 22:13:20"},
		{"ja-JP", "2023/11/14 22:13:20"},
		{"zh-CN", "2023年11月14日 22:13:20"},
		{"xx-invalid-", "Nov 14, 2023, 10:13:20 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f, err := NewDateFormatter(tt.locale, "UTC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Format(sampleMillis))
		})
	}
}

func TestDateFormatter_TranslatedMonths(t *testing.T) {
	tests := []struct {
		locale string
		month  string
	}{
		{"fr-FR", "14 nov"},
		{"fr_CA.UTF-8", "14 nov"},
		{"es-ES", "14 nov"},
		{"es_MX", "14 nov"},
		{"it-IT", "14 nov"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f, err := NewDateFormatter(tt.locale, "UTC")
			require.NoError(t, err)

			got := f.Format(sampleMillis)
			assert.True(t, strings.HasPrefix(got, tt.month), got)
			assert.True(t, strings.HasSuffix(got, "2023, 22:13:20"), got)
			assert.NotContains(t, got, "Nov")
			assert.NotContains(t, got, "PM")
		})
	}
}

func TestDateFormatter_ResolvedLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"fr-FR", language.French},
		{"es-ES", language.Spanish},
		{"ru_RU.UTF-8", language.Russian},
		{"sw-KE", language.AmericanEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f, err := NewDateFormatter(tt.locale, "UTC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Locale())
		})
	}
}

func TestDateFormatter_Timezone(t *testing.T) {
	f, err := NewDateFormatter("de-DE", "Europe/Berlin")
	require.NoError(t, err)

	assert.Equal(t, "14.11.2023, 23:13:20", f.Format(sampleMillis))
}

func TestDateFormatter_UnknownTimezone(t *testing.T) {
	_, err := NewDateFormatter("en-US", "Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestDateFormatter_HostLocaleFallback(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_TIME", "C")
	t.Setenv("LANG", "de_DE.UTF-8")

	f, err := NewDateFormatter("", "UTC")
	require.NoError(t, err)

	assert.Equal(t, language.German, f.Locale())
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "de-DE", normalizeLocale("de_DE.UTF-8"))
	assert.Equal(t, "fr-FR", normalizeLocale("fr_FR@euro"))
	assert.Equal(t, "en-US", normalizeLocale("en-US"))
}
