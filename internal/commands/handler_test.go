package commands

import (
	"context"
	"errors"
	"maps"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

type pingMessage struct{}

func (pingMessage) Type() string { return "cms.test.ping" }

func (pingMessage) Validate() error { return nil }

type rejectedMessage struct{}

func (rejectedMessage) Type() string { return "cms.test.rejected" }

func (rejectedMessage) Validate() error { return errors.New("invalid") }

func TestHandlerRunsValidMessage(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, _ pingMessage) error {
		called = true
		return nil
	})
	if err := h.Execute(context.Background(), pingMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuits(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, _ rejectedMessage) error {
		called = true
		return nil
	})
	err := h.Execute(context.Background(), rejectedMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler(func(ctx context.Context, _ pingMessage) error {
		called = true
		return nil
	})
	err := h.Execute(ctx, pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsPlainErrors(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ pingMessage) error {
		return errors.New("boom")
	})
	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerKeepsDomainCategory(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ pingMessage) error {
		return domain.NotFound("block", "b1")
	})
	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected sentinel preserved, got %v", err)
	}
}

func TestHandlerTimeout(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ pingMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[pingMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

// entryLog records entries with their persistent and per-call fields.
type entryLog struct {
	fields  map[string]any
	entries *[]logEntry
}

func newEntryLog() *entryLog {
	return &entryLog{fields: map[string]any{}, entries: &[]logEntry{}}
}

func (l *entryLog) record(level, msg string, args []any) {
	fields := maps.Clone(l.fields)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *entryLog) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *entryLog) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *entryLog) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *entryLog) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *entryLog) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *entryLog) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *entryLog) WithContext(context.Context) interfaces.Logger { return l }

func (l *entryLog) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &entryLog{fields: merged, entries: l.entries}
}

func (l *entryLog) last() logEntry {
	entries := *l.entries
	if len(entries) == 0 {
		return logEntry{}
	}
	return entries[len(entries)-1]
}

func TestHandlerReportsRejectedBatchAsFinal(t *testing.T) {
	log := newEntryLog()
	pageID := uuid.New()
	h := NewHandler(func(ctx context.Context, _ ReorderBlocksCommand) error {
		return domain.Batch("reorder", 1, errors.New("block belongs to another page"))
	}, WithLogger[ReorderBlocksCommand](log))

	err := h.Execute(context.Background(), ReorderBlocksCommand{PageID: pageID, Moves: []blocks.Move{{BlockID: uuid.New()}, {BlockID: uuid.New()}}})
	if !errors.Is(err, domain.ErrBatchRejected) {
		t.Fatalf("expected batch rejection, got %v", err)
	}
	entry := log.last()
	if entry.level != "warn" || entry.msg != "command.execute.rejected" {
		t.Fatalf("expected rejected warning, got %s %s", entry.level, entry.msg)
	}
	if entry.fields["retryable"] != false || entry.fields["batch_index"] != 1 || entry.fields["batch_operation"] != "reorder" {
		t.Fatalf("unexpected fields %v", entry.fields)
	}
	if entry.fields["code"] != "CMS_BATCH_REJECTED" || entry.fields["page_id"] != pageID || entry.fields["moves"] != 2 {
		t.Fatalf("unexpected fields %v", entry.fields)
	}
}

func TestHandlerReportsSyncFailureWithLocale(t *testing.T) {
	log := newEntryLog()
	blockID := uuid.New()
	h := NewHandler(func(ctx context.Context, msg ResyncBlockLocaleCommand) error {
		return &domain.SyncError{BlockID: msg.BlockID, Locale: "es", Err: errors.New("unreadable")}
	}, WithLogger[ResyncBlockLocaleCommand](log))

	err := h.Execute(context.Background(), ResyncBlockLocaleCommand{BlockID: blockID, Locale: "ES"})
	if !errors.Is(err, domain.ErrSyncFailed) {
		t.Fatalf("expected sync failure, got %v", err)
	}
	entry := log.last()
	if entry.level != "warn" || entry.fields["code"] != "CMS_SYNC_FAILED" || entry.fields["locale"] != "es" || entry.fields["block_id"] != blockID {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestHandlerReportsStoreFailureAsRetryable(t *testing.T) {
	log := newEntryLog()
	h := NewHandler(func(ctx context.Context, _ ResyncPageCommand) error {
		return errors.New("database is locked")
	}, WithLogger[ResyncPageCommand](log))

	err := h.Execute(context.Background(), ResyncPageCommand{PageID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	entry := log.last()
	if entry.level != "error" || entry.fields["retryable"] != true || entry.fields["code"] != codeStoreFailure {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestHandlerNamesInvalidFields(t *testing.T) {
	log := newEntryLog()
	h := NewHandler(func(ctx context.Context, _ RestoreBlockVersionCommand) error {
		t.Fatal("handler should not run")
		return nil
	}, WithLogger[RestoreBlockVersionCommand](log))

	err := h.Execute(context.Background(), RestoreBlockVersionCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	names, _ := log.last().fields["invalid_fields"].([]string)
	if len(names) != 2 || names[0] != "block_id" || names[1] != "version" {
		t.Fatalf("expected block_id and version named, got %v", names)
	}
}
