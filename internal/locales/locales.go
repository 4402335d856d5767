package locales

import (
	"fmt"
	"strings"
)

// Locale codes follow the naming convention used by translated message
// files: "ca_ES_ALL" style. The language is lowercase, the country and the
// group uppercase. A segment that is not set is replaced with the "all"
// sentinel in the appropriate case. The full form always carries three
// segments; the partial form drops the group.
const (
	// LangAll marks an unset language segment.
	LangAll = "all"
	// CountryAll marks an unset country segment.
	CountryAll = "ALL"
	// GroupAll marks an unset group segment and is the default group.
	GroupAll = "ALL"
)

const (
	// DefaultCode identifies the default (leading) locale of a gadget spec.
	// A fully loaded bundle set must always contain it.
	DefaultCode = "all_ALL_ALL"
	// DefaultPartialCode is the partial form of DefaultCode.
	DefaultPartialCode = "all_ALL"
)

// Code holds the segments of a parsed locale code. Group is empty when the
// code was parsed from its two-segment partial form.
type Code struct {
	Lang    string
	Country string
	Group   string
}

// IsPartial reports whether the code carries no group segment.
func (c Code) IsPartial() bool {
	return c.Group == ""
}

// String renders the code in its canonical form: the three-segment full form
// when a group is present, the two-segment partial form otherwise.
func (c Code) String() string {
	if c.IsPartial() {
		return fmt.Sprintf("%s_%s", strings.ToLower(c.Lang), strings.ToUpper(c.Country))
	}
	return FullCode(c.Lang, c.Country, c.Group)
}

// Parse splits a locale code into its segments. Two segments yield the
// partial form, three the full form. Any other segment count fails with a
// MalformedCodeError.
func Parse(code string) (Code, error) {
	segments := strings.Split(code, "_")
	switch len(segments) {
	case 2:
		return Code{Lang: segments[0], Country: segments[1]}, nil
	case 3:
		return Code{Lang: segments[0], Country: segments[1], Group: segments[2]}, nil
	default:
		return Code{}, &MalformedCodeError{Code: code}
	}
}

// FullCode builds the canonical three-segment code from its parts, applying
// case normalization and substituting the "all" sentinels for empty segments.
func FullCode(lang, country, group string) string {
	if lang == "" {
		lang = LangAll
	}
	if country == "" {
		country = CountryAll
	}
	if group == "" {
		group = GroupAll
	}
	return fmt.Sprintf("%s_%s_%s", strings.ToLower(lang), strings.ToUpper(country), strings.ToUpper(group))
}

// PartialCode reduces a full or partial code to its two-segment form.
func PartialCode(code string) (string, error) {
	parsed, err := Parse(code)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(parsed.Lang), strings.ToUpper(parsed.Country)), nil
}

// PartialToFull expands a partial code with the supplied group, producing the
// canonical three-segment form.
func PartialToFull(code, group string) (string, error) {
	parsed, err := Parse(code)
	if err != nil {
		return "", err
	}
	return FullCode(parsed.Lang, parsed.Country, group), nil
}
