package translationscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	pushBundleMessageType = "composer.translations.push_bundle"
	fullSyncMessageType   = "composer.translations.full_sync"
)

// PushBundleCommand replicates one translation bundle into the replica
// store. Language carries the partial locale code and Target the audience
// group.
type PushBundleCommand struct {
	TranslationURL string `json:"translation_url"`
	Language       string `json:"language"`
	Target         string `json:"target"`
}

// Type implements command.Message.
func (PushBundleCommand) Type() string { return pushBundleMessageType }

// Validate ensures the bundle key is complete before handlers execute.
func (cmd PushBundleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.TranslationURL, validation.Required, validation.By(requireNonBlank("composer.translations.push_bundle.url_required", "translation url is required"))),
		validation.Field(&cmd.Language, validation.Required),
		validation.Field(&cmd.Target, validation.Required),
	)
}

// FullSyncCommand replicates every stored bundle and prunes replica records
// no bundle backs anymore.
type FullSyncCommand struct{}

// Type implements command.Message.
func (FullSyncCommand) Type() string { return fullSyncMessageType }

// Validate implements command.Message.
func (FullSyncCommand) Validate() error { return nil }

func requireNonBlank(code, message string) func(value any) error {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
