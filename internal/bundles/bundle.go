package bundles

import (
	"github.com/morelab/appcomposer/internal/locales"
)

// Bundle is the message set for one (language, country, group) triple. It has
// no identity of its own beyond that key within its owning manager.
//
// Messages keep their insertion order so serialized forms are deterministic.
type Bundle struct {
	lang    string
	country string
	group   string

	keys     []string
	messages map[string]string
}

// New creates an empty bundle. An empty group defaults to the "ALL" sentinel.
func New(lang, country, group string) *Bundle {
	if group == "" {
		group = locales.GroupAll
	}
	return &Bundle{
		lang:     lang,
		country:  country,
		group:    group,
		messages: make(map[string]string),
	}
}

// Lang returns the language segment.
func (b *Bundle) Lang() string { return b.lang }

// Country returns the country segment.
func (b *Bundle) Country() string { return b.country }

// Group returns the group segment.
func (b *Bundle) Group() string { return b.group }

// Code returns the canonical full locale code for the bundle.
func (b *Bundle) Code() string {
	return locales.FullCode(b.lang, b.country, b.group)
}

// PartialCode returns the canonical two-segment code for the bundle.
func (b *Bundle) PartialCode() string {
	code, _ := locales.PartialCode(b.Code())
	return code
}

// AddMessage inserts or replaces a message. Replacing keeps the key's
// original position in the iteration order.
func (b *Bundle) AddMessage(key, value string) {
	if _, ok := b.messages[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.messages[key] = value
}

// RemoveMessage deletes a message. Removing an absent key fails with a
// KeyNotFoundError.
func (b *Bundle) RemoveMessage(key string) error {
	if _, ok := b.messages[key]; !ok {
		return &KeyNotFoundError{Key: key}
	}
	delete(b.messages, key)
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Message returns the translation for a key and whether it exists.
func (b *Bundle) Message(key string) (string, bool) {
	value, ok := b.messages[key]
	return value, ok
}

// Len returns the number of messages held.
func (b *Bundle) Len() int {
	return len(b.messages)
}

// Keys returns the message keys in insertion order.
func (b *Bundle) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Messages returns a copy of the message table.
func (b *Bundle) Messages() map[string]string {
	out := make(map[string]string, len(b.messages))
	for k, v := range b.messages {
		out[k] = v
	}
	return out
}
