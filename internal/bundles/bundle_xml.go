package bundles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// The message bundle format is the flat document consumed by OpenSocial
// gadgets: a <messagebundle> root holding one <msg name="..."> element with
// text content per message.

type xmlMessageBundle struct {
	XMLName xml.Name     `xml:"messagebundle"`
	Msgs    []xmlMessage `xml:"msg"`
}

type xmlMessage struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// ToXML serializes the bundle, one <msg> per message in insertion order.
func (b *Bundle) ToXML() ([]byte, error) {
	doc := xmlMessageBundle{Msgs: make([]xmlMessage, 0, len(b.keys))}
	for _, key := range b.keys {
		doc.Msgs = append(doc.Msgs, xmlMessage{Name: key, Text: b.messages[key]})
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("bundles: encode message bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("bundles: encode message bundle: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FromXML parses a message bundle document into a new Bundle for the given
// locale triple. A <msg> with no text content yields an empty string value.
func FromXML(data []byte, lang, country, group string) (*Bundle, error) {
	var doc xmlMessageBundle
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bundles: parse message bundle: %w", err)
	}
	bundle := New(lang, country, group)
	for _, msg := range doc.Msgs {
		bundle.AddMessage(msg.Name, strings.TrimSpace(msg.Text))
	}
	return bundle, nil
}

// FromMessages builds a bundle from a plain message map, inserting keys in
// sorted order so serialized output stays deterministic.
func FromMessages(lang, country, group string, messages map[string]string) *Bundle {
	bundle := New(lang, country, group)
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		bundle.AddMessage(key, messages[key])
	}
	return bundle
}
