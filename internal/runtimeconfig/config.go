package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrDefaultLocaleRequired   = errors.New("cms config: default locale is required")
	ErrStorageDriverUnknown    = errors.New("cms config: storage driver must be memory, sqlite or postgres")
	ErrStorageDSNRequired      = errors.New("cms config: storage dsn is required")
	ErrCacheTTLInvalid         = errors.New("cms config: cache ttl must be positive when cache is enabled")
	ErrStorageModeInvalid      = errors.New("cms config: translations storage mode must be merged or compact")
	ErrResyncConcurrency       = errors.New("cms config: resync concurrency must be zero or positive")
	ErrLoggingProviderUnknown  = errors.New("cms config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("cms config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("cms config: logging format is invalid")
	ErrNavigationBaseURL       = errors.New("cms config: navigation base url is required when locale prefixes are set")
	ErrCommandRetriesNegative  = errors.New("cms config: command retries must be zero or positive")
	ErrImporterPatternRequired = errors.New("cms config: importer pattern is required")
)

// Config is the runtime configuration of the CMS module. Field names match
// the keys of YAML and TOML config files.
type Config struct {
	DefaultLocale string             `yaml:"default_locale" toml:"default_locale"`
	Locales       []string           `yaml:"locales" toml:"locales"`
	Storage       StorageConfig      `yaml:"storage" toml:"storage"`
	Cache         CacheConfig        `yaml:"cache" toml:"cache"`
	Translations  TranslationsConfig `yaml:"translations" toml:"translations"`
	Logging       LoggingConfig      `yaml:"logging" toml:"logging"`
	Navigation    NavigationConfig   `yaml:"navigation" toml:"navigation"`
	Commands      CommandsConfig     `yaml:"commands" toml:"commands"`
	Importer      ImporterConfig     `yaml:"importer" toml:"importer"`
}

type StorageConfig struct {
	Driver       string `yaml:"driver" toml:"driver"`
	DSN          string `yaml:"dsn" toml:"dsn"`
	AutoMigrate  bool   `yaml:"auto_migrate" toml:"auto_migrate"`
	MaxOpenConns int    `yaml:"max_open_conns" toml:"max_open_conns"`
}

// CacheConfig controls the read-through page cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" toml:"enabled"`
	TTL     time.Duration `yaml:"ttl" toml:"ttl"`
}

type TranslationsConfig struct {
	StorageMode          string `yaml:"storage_mode" toml:"storage_mode"`
	SyncOnSettingsChange bool   `yaml:"sync_on_settings_change" toml:"sync_on_settings_change"`
	ResyncConcurrency    int    `yaml:"resync_concurrency" toml:"resync_concurrency"`
}

type LoggingConfig struct {
	Provider  string   `yaml:"provider" toml:"provider"`
	Level     string   `yaml:"level" toml:"level"`
	Format    string   `yaml:"format" toml:"format"`
	AddSource bool     `yaml:"add_source" toml:"add_source"`
	Focus     []string `yaml:"focus" toml:"focus"`
}

// NavigationConfig describes public page URLs. LocalePrefixes maps a locale
// to the path prefix its pages live under, e.g. "es": "/es". RouteConfig,
// when set by a host application, replaces the generated route table.
type NavigationConfig struct {
	BaseURL        string            `yaml:"base_url" toml:"base_url"`
	PagePath       string            `yaml:"page_path" toml:"page_path"`
	LocalePrefixes map[string]string `yaml:"locale_prefixes" toml:"locale_prefixes"`
	RouteConfig    *urlkit.Config    `yaml:"-" toml:"-"`
}

type CommandsConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	MaxRetries int  `yaml:"max_retries" toml:"max_retries"`
}

// ImporterConfig points the seed importer at a directory of documents.
type ImporterConfig struct {
	Dir     string `yaml:"dir" toml:"dir"`
	Pattern string `yaml:"pattern" toml:"pattern"`
}

func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Storage: StorageConfig{
			Driver:      "sqlite",
			DSN:         "file:cms.db?cache=shared&_foreign_keys=on",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Translations: TranslationsConfig{
			StorageMode:          "merged",
			SyncOnSettingsChange: true,
			ResyncConcurrency:    4,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Navigation: NavigationConfig{
			PagePath:       "/:slug",
			LocalePrefixes: map[string]string{},
		},
		Importer: ImporterConfig{
			Dir:     "content",
			Pattern: "*.md",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case StorageMemory:
	case "sqlite", "sqlite3", "postgres", "postgresql", "pg":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Translations.StorageMode)) {
	case "", "merged", "compact":
	default:
		return fmt.Errorf("%w: %q", ErrStorageModeInvalid, cfg.Translations.StorageMode)
	}
	if cfg.Translations.ResyncConcurrency < 0 {
		return ErrResyncConcurrency
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && provider != "console" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	if len(cfg.Navigation.LocalePrefixes) > 0 && strings.TrimSpace(cfg.Navigation.BaseURL) == "" && cfg.Navigation.RouteConfig == nil {
		return ErrNavigationBaseURL
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandRetriesNegative
	}
	if strings.TrimSpace(cfg.Importer.Dir) != "" && strings.TrimSpace(cfg.Importer.Pattern) == "" {
		return ErrImporterPatternRequired
	}
	return nil
}

// AllLocales returns the default locale followed by the other configured
// locales, lowercased and without duplicates.
func (cfg Config) AllLocales() []string {
	out := []string{strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))}
	for _, locale := range cfg.Locales {
		locale = strings.ToLower(strings.TrimSpace(locale))
		if locale != "" && !slices.Contains(out, locale) {
			out = append(out, locale)
		}
	}
	return out
}

// Routes returns the go-urlkit route table for public pages, or nil when no
// base URL is configured. The default locale lives at the root group; every
// prefixed locale gets a child group named after it.
func (cfg Config) Routes() *urlkit.Config {
	nav := cfg.Navigation
	if nav.RouteConfig != nil {
		return nav.RouteConfig
	}
	if strings.TrimSpace(nav.BaseURL) == "" {
		return nil
	}
	pagePath := nav.PagePath
	if strings.TrimSpace(pagePath) == "" {
		pagePath = "/:slug"
	}
	root := urlkit.GroupConfig{
		Name:    RouteGroup,
		BaseURL: strings.TrimRight(nav.BaseURL, "/"),
		Paths:   map[string]string{PageRoute: pagePath},
	}
	locales := make([]string, 0, len(nav.LocalePrefixes))
	for locale := range nav.LocalePrefixes {
		locales = append(locales, locale)
	}
	slices.Sort(locales)
	for _, locale := range locales {
		root.Groups = append(root.Groups, urlkit.GroupConfig{
			Name:  strings.ToLower(locale),
			Path:  nav.LocalePrefixes[locale],
			Paths: map[string]string{PageRoute: pagePath},
		})
	}
	return &urlkit.Config{Groups: []urlkit.GroupConfig{root}}
}

// LocaleGroups maps each prefixed locale to its route group path.
func (cfg Config) LocaleGroups() map[string]string {
	groups := make(map[string]string, len(cfg.Navigation.LocalePrefixes))
	for locale := range cfg.Navigation.LocalePrefixes {
		locale = strings.ToLower(strings.TrimSpace(locale))
		groups[locale] = RouteGroup + "." + locale
	}
	return groups
}

// StorageMemory keeps every repository in process.
const StorageMemory = "memory"

const (
	RouteGroup = "public"
	PageRoute  = "page"
)

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zap":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
