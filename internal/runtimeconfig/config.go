// Package runtimeconfig aggregates the runtime configuration of the
// composer module.
package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrHostingBaseURLRequired = errors.New("composer config: hosting base URL is required")
var ErrSyncPeriodInvalid = errors.New("composer config: sync period must be positive")
var ErrSyncPollInvalid = errors.New("composer config: sync poll interval must be positive")
var ErrRetryAttemptsInvalid = errors.New("composer config: retry attempts must be positive")
var ErrRetryDelayInvalid = errors.New("composer config: retry delays must be positive and ordered")
var ErrStorageDriverUnknown = errors.New("composer config: storage driver is invalid")
var ErrLoggingProviderUnknown = errors.New("composer config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("composer config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("composer config: logging format is invalid")
var ErrSameNameLimitInvalid = errors.New("composer config: same name limit must be positive")

// Config aggregates adapter bindings for the composer module. Fields use
// simple types so host applications can extend them later.
type Config struct {
	Hosting Hosting
	Storage Storage
	Sync    Sync
	Apps    Apps
	Logging Logging
}

// Hosting configures how hosted spec and language file URLs are built.
type Hosting struct {
	// BaseURL is the externally reachable root of the composer.
	BaseURL string
	// SpecPath is the route template of the rendered spec, with an
	// :appid parameter.
	SpecPath string
	// LangfilePath is the route template of hosted language files, with
	// :appid and :langfile parameters. The langfile parameter receives the
	// file name, a full locale code plus ".xml".
	LangfilePath string
}

// Storage selects the database backend.
type Storage struct {
	// Driver is "sqlite", "postgres" or "memory".
	Driver string
	DSN    string
}

// Sync controls the replication pipeline.
type Sync struct {
	// Disabled turns replication off entirely. Push and full sync jobs
	// are dropped instead of scheduled.
	Disabled bool
	// Period is the interval between full sync passes.
	Period time.Duration
	// Poll is how often the worker drains due jobs.
	Poll time.Duration
	// Retry bounds the per-job retry behaviour.
	Retry Retry
	// BatchSize caps jobs drained per poll.
	BatchSize int
}

// Retry bounds the backoff applied to failed replication jobs.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Apps tunes application management behaviour.
type Apps struct {
	// SameNameLimit caps the numbered suffixes tried when deriving a
	// unique application name.
	SameNameLimit int
}

// Logging captures provider-specific options for runtime logging.
type Logging struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults.
func DefaultConfig() Config {
	return Config{
		Hosting: Hosting{
			SpecPath:     "/app/:appid/app.xml",
			LangfilePath: "/app/:appid/i18n/:langfile",
		},
		Storage: Storage{
			Driver: "memory",
		},
		Sync: Sync{
			Period: 30 * time.Minute,
			Poll:   time.Second,
			Retry: Retry{
				MaxAttempts: 5,
				BaseDelay:   30 * time.Second,
				MaxDelay:    30 * time.Minute,
			},
			BatchSize: 50,
		},
		Apps: Apps{
			SameNameLimit: 30,
		},
		Logging: Logging{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Hosting.BaseURL) == "" {
		return ErrHostingBaseURLRequired
	}
	switch strings.TrimSpace(strings.ToLower(cfg.Storage.Driver)) {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Sync.Period <= 0 {
		return ErrSyncPeriodInvalid
	}
	if cfg.Sync.Poll <= 0 {
		return ErrSyncPollInvalid
	}
	if cfg.Sync.Retry.MaxAttempts <= 0 {
		return ErrRetryAttemptsInvalid
	}
	if cfg.Sync.Retry.BaseDelay <= 0 || cfg.Sync.Retry.MaxDelay < cfg.Sync.Retry.BaseDelay {
		return ErrRetryDelayInvalid
	}
	if cfg.Apps.SameNameLimit <= 0 {
		return ErrSameNameLimitInvalid
	}
	if provider := normalizeToken(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalizeToken(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := normalizeToken(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "noop":
		return true
	}
	return false
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty", "text":
		return true
	}
	return false
}
