// Package logging resolves module loggers from an optional provider.
package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const (
	RootModule         = "cms"
	PagesModule        = "cms.pages"
	BlocksModule       = "cms.blocks"
	TranslationsModule = "cms.translations"
	PublicModule       = "cms.public"
	CommandsModule     = "cms.commands"
	ImporterModule     = "cms.importer"
	StorageModule      = "cms.storage"
)

// ModuleLogger returns the provider's logger for module with a "module"
// field attached. A nil provider yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = RootModule
	}
	var logger interfaces.Logger = NoOp()
	if provider != nil {
		if named := provider.GetLogger(module); named != nil {
			logger = named
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// WithFields attaches fields when logger supports them and returns logger
// unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	if len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return logger
}

// ForContext binds ctx and any fields stored on it.
func ForContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		logger = NoOp()
	}
	if ctx == nil {
		return logger
	}
	return WithFields(logger.WithContext(ctx), ContextFields(ctx))
}

type contextKey struct{}

// ContextWithFields stores fields on ctx, merged over any already present.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// NoOp drops every entry.
func NoOp() interfaces.Logger { return noop{} }

type noop struct{}

func (noop) Trace(string, ...any)                          {}
func (noop) Debug(string, ...any)                          {}
func (noop) Info(string, ...any)                           {}
func (noop) Warn(string, ...any)                           {}
func (noop) Error(string, ...any)                          {}
func (noop) Fatal(string, ...any)                          {}
func (n noop) WithFields(map[string]any) interfaces.Logger { return n }
func (n noop) WithContext(context.Context) interfaces.Logger {
	return n
}
