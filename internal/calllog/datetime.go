package calllog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Medium date-time layouts per supported locale. Month names are translated
// by monday; unmatched locales fall back to US English.
var mediumLayouts = []struct {
	tag    language.Tag
	locale monday.Locale
	layout string
}{
	{language.AmericanEnglish, monday.LocaleEnUS, "Jan 2, 2006, 3:04:05 PM"},
	{language.BritishEnglish, monday.LocaleEnGB, "2 Jan 2006, 15:04:05"},
	{language.German, monday.LocaleDeDE, "02.01.2006, 15:04:05"},
	{language.French, monday.LocaleFrFR, "2 Jan 2006, 15:04:05"},
	{language.Spanish, monday.LocaleEsES, "2 Jan 2006, 15:04:05"},
	{language.Italian, monday.LocaleItIT, "2 Jan 2006, 15:04:05"},
	{language.Dutch, monday.LocaleNlNL, "2 Jan 2006, 15:04:05"},
	{language.BrazilianPortuguese, monday.LocalePtBR, "2 de Jan de 2006 15:04:05"},
	{language.Russian, monday.LocaleRuRU, "2 Jan 2006 г., 15:04:05"},
	{language.Japanese, monday.LocaleJaJP, "2006/01/02 15:04:05"},
	{language.Chinese, monday.LocaleZhCN, "2006年1月2日 15:04:05"},
}

var layoutMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(mediumLayouts))
	for i, l := range mediumLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DateFormatter renders epoch milliseconds in a medium-length, locale-dependent
// date and time style without sub-second precision.
type DateFormatter struct {
	tag      language.Tag
	locale   monday.Locale
	layout   string
	location *time.Location
}

// NewDateFormatter resolves locale (BCP 47 or POSIX form such as de_DE.UTF-8)
// and an IANA timezone name. Empty values fall back to the host environment.
func NewDateFormatter(locale, timezone string) (*DateFormatter, error) {
	location := time.Local
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
		}
		location = loc
	}

	if locale == "" {
		locale = hostLocale()
	}

	idx := 0
	if tag, err := language.Parse(normalizeLocale(locale)); err == nil {
		_, i, confidence := layoutMatcher.Match(tag)
		if confidence != language.No {
			idx = i
		}
	}

	return &DateFormatter{
		tag:      mediumLayouts[idx].tag,
		locale:   mediumLayouts[idx].locale,
		layout:   mediumLayouts[idx].layout,
		location: location,
	}, nil
}

func (f *DateFormatter) Format(epochMillis int64) string {
	return monday.Format(time.UnixMilli(epochMillis).In(f.location), f.layout, f.locale)
}

func (f *DateFormatter) Locale() language.Tag {
	return f.tag
}

func hostLocale() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return ""
}

// normalizeLocale turns de_DE.UTF-8@euro into de-DE.
func normalizeLocale(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ReplaceAll(locale, "_", "-")
}
