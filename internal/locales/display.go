package locales

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// UnknownDisplayName is returned when no human-readable name exists for a
// locale. Lookup failures never propagate as errors.
const UnknownDisplayName = "unknown"

// DisplayName returns a best-effort English name for the locale, e.g.
// "Catalan (Spain)" for ("ca", "ES"). The "ALL" country sentinel is treated
// as an unset country.
func DisplayName(lang, country string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, LangAll) {
		return UnknownDisplayName
	}
	base, err := language.ParseBase(lang)
	if err != nil {
		return UnknownDisplayName
	}

	parts := []any{base}
	country = strings.TrimSpace(country)
	if country != "" && !strings.EqualFold(country, CountryAll) {
		region, err := language.ParseRegion(country)
		if err != nil {
			return UnknownDisplayName
		}
		parts = append(parts, region)
	}

	tag, err := language.Compose(parts...)
	if err != nil {
		return UnknownDisplayName
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return UnknownDisplayName
	}
	return name
}
