package workout

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultLocaleTag = "en-GB"

// Locale controls month naming and capitalization in descriptions.
type Locale struct {
	tag    language.Tag
	months monday.Locale
}

// DefaultLocale returns British English.
func DefaultLocale() Locale {
	loc, err := ParseLocale(defaultLocaleTag)
	if err != nil {
		return Locale{tag: language.BritishEnglish, months: monday.LocaleEnGB}
	}
	return loc
}

// ParseLocale accepts BCP 47 tags ("fr-CA") and POSIX names ("fr_CA.UTF-8").
func ParseLocale(value string) (Locale, error) {
	value = normalizeLocale(value)
	if value == "" {
		return Locale{}, fmt.Errorf("locale is empty")
	}
	tag, err := language.Parse(value)
	if err != nil {
		return Locale{}, fmt.Errorf("invalid locale %q: %w", value, err)
	}
	months, ok := monthLocale(tag)
	if !ok {
		return Locale{}, fmt.Errorf("locale %q has no month names", value)
	}
	return Locale{tag: tag, months: months}, nil
}

// monthLocale picks the month names for tag: its own region, the likely
// region of its base language, then any region of that language.
func monthLocale(tag language.Tag) (monday.Locale, bool) {
	base, _ := tag.Base()
	candidates := make([]monday.Locale, 0, 2)
	if region, conf := tag.Region(); conf != language.No && region.String() != "ZZ" {
		candidates = append(candidates, monday.Locale(base.String()+"_"+region.String()))
	}
	if region, conf := language.Make(base.String()).Region(); conf != language.No {
		candidates = append(candidates, monday.Locale(base.String()+"_"+region.String()))
	}
	for _, candidate := range candidates {
		if supportedMonths(candidate) {
			return candidate, true
		}
	}
	prefix := base.String() + "_"
	for _, l := range monday.ListLocales() {
		if strings.HasPrefix(string(l), prefix) {
			return l, true
		}
	}
	return "", false
}

// LocaleFromEnv derives a locale from a LANG-style value, falling back to
// the default for empty, C and POSIX values or unsupported locales.
func LocaleFromEnv(value string) Locale {
	switch strings.TrimSpace(value) {
	case "", "C", "POSIX":
		return DefaultLocale()
	}
	loc, err := ParseLocale(value)
	if err != nil {
		return DefaultLocale()
	}
	return loc
}

func normalizeLocale(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	return strings.ReplaceAll(value, "_", "-")
}

func supportedMonths(locale monday.Locale) bool {
	for _, l := range monday.ListLocales() {
		if l == locale {
			return true
		}
	}
	return false
}

// String returns the BCP 47 tag.
func (l Locale) String() string {
	return l.tag.String()
}

// Title capitalizes the first letter of s.
func (l Locale) Title(s string) string {
	return cases.Title(l.tag).String(s)
}

// DayMonth formats "17 October" with a localized month name.
func (l Locale) DayMonth(t time.Time) string {
	return monday.Format(t, "2 January", l.months)
}
