package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-storefront-cms/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestMemoryStorageNeedsNoDSN(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.StorageMemory
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"blank default locale", func(c *runtimeconfig.Config) { c.DefaultLocale = " " }, runtimeconfig.ErrDefaultLocaleRequired},
		{"unknown driver", func(c *runtimeconfig.Config) { c.Storage.Driver = "mysql" }, runtimeconfig.ErrStorageDriverUnknown},
		{"missing dsn", func(c *runtimeconfig.Config) { c.Storage.DSN = "" }, runtimeconfig.ErrStorageDSNRequired},
		{"cache without ttl", func(c *runtimeconfig.Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, runtimeconfig.ErrCacheTTLInvalid},
		{"storage mode", func(c *runtimeconfig.Config) { c.Translations.StorageMode = "full" }, runtimeconfig.ErrStorageModeInvalid},
		{"negative concurrency", func(c *runtimeconfig.Config) { c.Translations.ResyncConcurrency = -1 }, runtimeconfig.ErrResyncConcurrency},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) { c.Logging.Provider = "gologger"; c.Logging.Format = "xml" }, runtimeconfig.ErrLoggingFormatInvalid},
		{"prefix without base url", func(c *runtimeconfig.Config) { c.Navigation.LocalePrefixes = map[string]string{"es": "/es"} }, runtimeconfig.ErrNavigationBaseURL},
		{"negative retries", func(c *runtimeconfig.Config) { c.Commands.MaxRetries = -1 }, runtimeconfig.ErrCommandRetriesNegative},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseYAMLExpandsEnvironment(t *testing.T) {
	t.Setenv("CMS_TEST_DSN", "postgres://cms@localhost/cms")
	data := []byte(`
default_locale: en
locales: [en, es, FR]
storage:
  driver: postgres
  dsn: ${CMS_TEST_DSN}
cache:
  enabled: true
  ttl: 5m
translations:
  storage_mode: compact
  sync_on_settings_change: false
navigation:
  base_url: https://shop.example.com/
  locale_prefixes:
    es: /es
`)
	cfg, err := runtimeconfig.Parse(data, ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.DSN != "postgres://cms@localhost/cms" {
		t.Fatalf("expected expanded dsn, got %q", cfg.Storage.DSN)
	}
	if cfg.Cache.TTL != 5*time.Minute || cfg.Translations.SyncOnSettingsChange || cfg.Translations.ResyncConcurrency != 4 {
		t.Fatalf("unexpected decoded config %+v", cfg)
	}
	if diff := cmp.Diff([]string{"en", "es", "fr"}, cfg.AllLocales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
	routes := cfg.Routes()
	if routes == nil || len(routes.Groups) != 1 || routes.Groups[0].BaseURL != "https://shop.example.com" {
		t.Fatalf("unexpected routes %+v", routes)
	}
	if diff := cmp.Diff(map[string]string{"es": "public.es"}, cfg.LocaleGroups()); diff != "" {
		t.Fatalf("locale groups mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := runtimeconfig.Parse([]byte("storage:\n  engine: mysql\n"), "yml"); err == nil {
		t.Fatal("expected unknown yaml key to fail")
	}
	if _, err := runtimeconfig.Parse([]byte("[storage]\nengine = \"mysql\"\n"), ".toml"); err == nil {
		t.Fatal("expected unknown toml key to fail")
	}
	if _, err := runtimeconfig.Parse([]byte("{}"), ".json"); !errors.Is(err, runtimeconfig.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.toml")
	content := `
default_locale = "en"
locales = ["es"]

[storage]
driver = "sqlite"
dsn = "file:test.db"

[translations]
resync_concurrency = 8

[logging]
provider = "zap"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Translations.ResyncConcurrency != 8 || cfg.Logging.Provider != "zap" || cfg.Storage.DSN != "file:test.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Routes() != nil {
		t.Fatalf("expected no routes without base url")
	}
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}
