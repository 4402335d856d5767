package translations

import "time"

// Bundle is the shared translation bundle for one language of one upstream
// spec. Language holds the partial locale code (lang_COUNTRY) and Target the
// audience group, so Language + "_" + Target is the full locale code.
type Bundle struct {
	ID             int64
	TranslationURL string
	Language       string
	Target         string
}

// FullCode returns the full locale code of the bundle.
func (b *Bundle) FullCode() string {
	return b.Language + "_" + b.Target
}

// Message is one translated key. UpdatedAt only moves when the value
// actually changes; it feeds the replication watermark. Inactive messages
// are keys that disappeared from a later save and are excluded from
// rendered output and replication payloads.
type Message struct {
	Key       string
	Value     string
	UpdatedAt time.Time
	Active    bool
}
