package bundles

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/morelab/appcomposer/internal/locales"
)

// A gadget spec is the documented OpenSocial shape: a ModulePrefs element
// holding zero or more Locale elements with a required "messages" URL
// attribute plus optional "lang" and "country" attributes. The element with
// neither lang nor country is the default locale.

const (
	localeElement      = "Locale"
	modulePrefsElement = "ModulePrefs"

	messagesAttr = "messages"
	langAttr     = "lang"
	countryAttr  = "country"
)

// SpecLocale is one Locale reference extracted from a gadget spec. Missing
// lang or country attributes are replaced with the "all"/"ALL" sentinels.
type SpecLocale struct {
	Lang        string
	Country     string
	MessagesURL string
}

// LocaleEntry describes one Locale element to inject during a spec rewrite.
// Sentinel lang/country values are omitted from the emitted attributes.
type LocaleEntry struct {
	Lang        string
	Country     string
	MessagesURL string
}

// ExtractLocales collects every Locale element's (lang, country, messages)
// triple from a gadget spec document.
func ExtractLocales(data []byte) ([]SpecLocale, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var found []SpecLocale
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != localeElement {
			continue
		}
		locale := SpecLocale{Lang: locales.LangAll, Country: locales.CountryAll}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case messagesAttr:
				locale.MessagesURL = attr.Value
			case langAttr:
				locale.Lang = attr.Value
			case countryAttr:
				locale.Country = attr.Value
			}
		}
		if locale.MessagesURL == "" {
			return nil, fmt.Errorf("%w: Locale element without a messages attribute", ErrSpecInvalid)
		}
		found = append(found, locale)
	}
	return found, nil
}

// RewriteSpec produces a new gadget spec document from the original: every
// Locale element is dropped and the supplied entries are appended to
// ModulePrefs instead. With respectDefault set, the original default-locale
// element (no lang, no country) is kept untouched; its absence fails with
// ErrNoDefaultLanguage since such a spec is not eligible for translation.
//
// The transform never mutates the input; tokens are copied into a fresh
// pretty-printed document.
func RewriteSpec(data []byte, entries []LocaleEntry, respectDefault bool) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	defaultFound := false
	sawModulePrefs := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == localeElement {
				if respectDefault && !defaultFound && isDefaultLocale(t) {
					defaultFound = true
					if err := copyElement(dec, enc, t); err != nil {
						return nil, err
					}
					continue
				}
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
				}
				continue
			}
			if t.Name.Local == modulePrefsElement {
				sawModulePrefs = true
			}
			if err := enc.EncodeToken(xml.CopyToken(t)); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		case xml.EndElement:
			if t.Name.Local == modulePrefsElement {
				for _, entry := range entries {
					if err := encodeLocaleEntry(enc, entry); err != nil {
						return nil, err
					}
				}
			}
			if err := enc.EncodeToken(t); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		case xml.CharData:
			// Formatting whitespace is dropped; the encoder re-indents.
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		case xml.Comment:
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		case xml.Directive:
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
			}
		}
	}

	if !sawModulePrefs {
		return nil, fmt.Errorf("%w: missing ModulePrefs element", ErrSpecInvalid)
	}
	if respectDefault && !defaultFound {
		return nil, ErrNoDefaultLanguage
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func isDefaultLocale(start xml.StartElement) bool {
	for _, attr := range start.Attr {
		if attr.Name.Local == langAttr || attr.Name.Local == countryAttr {
			return false
		}
	}
	return true
}

// copyElement copies an element and its subtree verbatim, start tag included.
func copyElement(dec *xml.Decoder, enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(xml.CopyToken(start)); err != nil {
		return fmt.Errorf("%w: %v", ErrSpecInvalid, err)
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSpecInvalid, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return fmt.Errorf("%w: %v", ErrSpecInvalid, err)
		}
	}
	return nil
}

func encodeLocaleEntry(enc *xml.Encoder, entry LocaleEntry) error {
	start := xml.StartElement{Name: xml.Name{Local: localeElement}}
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: messagesAttr}, Value: entry.MessagesURL})
	if entry.Lang != "" && entry.Lang != locales.LangAll {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: langAttr}, Value: entry.Lang})
	}
	if entry.Country != "" && entry.Country != locales.CountryAll {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: countryAttr}, Value: entry.Country})
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("%w: %v", ErrSpecInvalid, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("%w: %v", ErrSpecInvalid, err)
	}
	return nil
}
