package logging

import (
	"context"
	"strings"

	"github.com/morelab/appcomposer/pkg/interfaces"
)

const (
	rootModule      = "composer"
	bundlesModule   = "composer.bundles"
	appsModule      = "composer.apps"
	ownershipModule = "composer.ownership"
	syncModule      = "composer.sync"
	schedulerModule = "composer.scheduler"
	httpModule      = "composer.http"
)

const (
	fieldSpecURL        = "spec_url"
	fieldLocaleCode     = "locale_code"
	fieldTranslationURL = "translation_url"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// BundlesLogger returns the logger namespace reserved for bundle management.
func BundlesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bundlesModule)
}

// AppsLogger returns the logger namespace reserved for application services.
func AppsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, appsModule)
}

// OwnershipLogger returns the logger namespace reserved for the ownership registry.
func OwnershipLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ownershipModule)
}

// SyncLogger returns the logger namespace reserved for the replication pipeline.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// SchedulerLogger returns the logger namespace reserved for scheduler workers.
func SchedulerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schedulerModule)
}

// HTTPLogger returns the logger namespace reserved for the hosted endpoints.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithTranslationContext enriches the provided logger with common replication
// fields such as the spec URL, translation URL and locale code. Empty values
// are ignored.
func WithTranslationContext(logger interfaces.Logger, specURL, translationURL, code string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(specURL); trimmed != "" {
		fields[fieldSpecURL] = trimmed
	}
	if trimmed := strings.TrimSpace(translationURL); trimmed != "" {
		fields[fieldTranslationURL] = trimmed
	}
	if trimmed := strings.TrimSpace(code); trimmed != "" {
		fields[fieldLocaleCode] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
