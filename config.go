package cms

import "github.com/goliatone/go-storefront-cms/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired   = runtimeconfig.ErrDefaultLocaleRequired
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrStorageModeInvalid      = runtimeconfig.ErrStorageModeInvalid
	ErrResyncConcurrency       = runtimeconfig.ErrResyncConcurrency
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrNavigationBaseURL       = runtimeconfig.ErrNavigationBaseURL
	ErrCommandRetriesNegative  = runtimeconfig.ErrCommandRetriesNegative
	ErrImporterPatternRequired = runtimeconfig.ErrImporterPatternRequired
	ErrUnsupportedFormat       = runtimeconfig.ErrUnsupportedFormat
)

const StorageMemory = runtimeconfig.StorageMemory

type (
	Config             = runtimeconfig.Config
	StorageConfig      = runtimeconfig.StorageConfig
	CacheConfig        = runtimeconfig.CacheConfig
	TranslationsConfig = runtimeconfig.TranslationsConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
	NavigationConfig   = runtimeconfig.NavigationConfig
	CommandsConfig     = runtimeconfig.CommandsConfig
	ImporterConfig     = runtimeconfig.ImporterConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML or TOML file, expanding ${ENV} references.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
