package piranha

import "github.com/piranhacms/piranha-go/internal/runtimeconfig"

var (
	ErrMaxRetriesInvalid       = runtimeconfig.ErrMaxRetriesInvalid
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrPostsFeatureRequired    = runtimeconfig.ErrPostsFeatureRequired

	ErrStorageProviderUnknown         = runtimeconfig.ErrStorageProviderUnknown
	ErrAutoInvalidateRequiresCommands = runtimeconfig.ErrAutoInvalidateRequiresCommands
)

type (
	Config         = runtimeconfig.Config
	EngineConfig   = runtimeconfig.EngineConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	ArchiveConfig  = runtimeconfig.ArchiveConfig
	Features       = runtimeconfig.Features
	CommandsConfig = runtimeconfig.CommandsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
