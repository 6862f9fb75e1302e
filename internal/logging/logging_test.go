package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

type capture struct {
	fields []map[string]any
	ctxs   []context.Context
}

func (c *capture) Trace(string, ...any) {}
func (c *capture) Debug(string, ...any) {}
func (c *capture) Info(string, ...any)  {}
func (c *capture) Warn(string, ...any)  {}
func (c *capture) Error(string, ...any) {}
func (c *capture) Fatal(string, ...any) {}

func (c *capture) WithFields(fields map[string]any) interfaces.Logger {
	c.fields = append(c.fields, fields)
	return c
}

func (c *capture) WithContext(ctx context.Context) interfaces.Logger {
	c.ctxs = append(c.ctxs, ctx)
	return c
}

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLoggerWithoutProvider(t *testing.T) {
	logger := ModuleLogger(nil, BlocksModule)
	if _, ok := logger.(noop); !ok {
		t.Fatalf("expected noop logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("ignored")
}

func TestModuleLoggerAttachesModule(t *testing.T) {
	inner := &capture{}
	provider := &namedProvider{logger: inner}

	ModuleLogger(provider, "")

	if len(provider.names) != 1 || provider.names[0] != RootModule {
		t.Fatalf("expected root module lookup, got %v", provider.names)
	}
	if len(inner.fields) != 1 || inner.fields[0]["module"] != RootModule {
		t.Fatalf("expected module field, got %v", inner.fields)
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r1"})
	ctx = ContextWithFields(ctx, map[string]any{"actor_id": "u1"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r1" || fields["actor_id"] != "u1" {
		t.Fatalf("unexpected fields %v", fields)
	}
	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r1" {
		t.Fatalf("context fields must be copied")
	}

	inner := &capture{}
	ForContext(ctx, inner)
	if len(inner.ctxs) != 1 || len(inner.fields) != 1 || inner.fields[0]["actor_id"] != "u1" {
		t.Fatalf("expected context and fields bound, got %+v", inner)
	}
}
