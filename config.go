package appcomposer

import "github.com/morelab/appcomposer/internal/runtimeconfig"

var (
	ErrHostingBaseURLRequired = runtimeconfig.ErrHostingBaseURLRequired
	ErrSyncPeriodInvalid      = runtimeconfig.ErrSyncPeriodInvalid
	ErrSyncPollInvalid        = runtimeconfig.ErrSyncPollInvalid
	ErrRetryAttemptsInvalid   = runtimeconfig.ErrRetryAttemptsInvalid
	ErrRetryDelayInvalid      = runtimeconfig.ErrRetryDelayInvalid
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrSameNameLimitInvalid   = runtimeconfig.ErrSameNameLimitInvalid
)

type (
	Config        = runtimeconfig.Config
	HostingConfig = runtimeconfig.Hosting
	StorageConfig = runtimeconfig.Storage
	SyncConfig    = runtimeconfig.Sync
	RetryConfig   = runtimeconfig.Retry
	AppsConfig    = runtimeconfig.Apps
	LoggingConfig = runtimeconfig.Logging
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
