package zaplogger_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/logging/zaplogger"
)

func TestZapProviderNamesModulesAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	provider := zaplogger.New(zap.New(core))

	logger := logging.ModuleLogger(provider, logging.TranslationsModule)
	logger.Info("translations.resync.complete", "block_id", "b1", "synced", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != logging.TranslationsModule {
		t.Fatalf("expected logger name %s, got %s", logging.TranslationsModule, entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["module"] != logging.TranslationsModule || fields["block_id"] != "b1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestNewFromConfigRejectsBadLevel(t *testing.T) {
	if _, err := zaplogger.NewFromConfig("loud", "json"); err == nil {
		t.Fatalf("expected invalid level error")
	}
}
