package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/translations"
)

var errStoreBusy = errors.New("translation store busy")

// flakyTranslations fails the first failures calls of the methods the
// handlers under test use.
type flakyTranslations struct {
	translations.Service
	failures int32
	calls    atomic.Int32
}

func (f *flakyTranslations) CompactBlockTranslations(context.Context, uuid.UUID) (int, error) {
	if f.calls.Add(1) <= f.failures {
		return 0, errStoreBusy
	}
	return 2, nil
}

func (f *flakyTranslations) ResyncBlockLocale(context.Context, uuid.UUID, string) (*translations.BlockTranslation, error) {
	f.calls.Add(1)
	return nil, errStoreBusy
}

func TestDispatcherRetriesCompactionUntilSuccess(t *testing.T) {
	svc := &flakyTranslations{failures: 1}
	handler := NewCompactTranslationsHandler(svc, nil, WithTimeout[CompactTranslationsCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), CompactTranslationsCommand{PageID: uuid.New()}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if got := svc.calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	svc := &flakyTranslations{}
	handler := NewResyncBlockLocaleHandler(svc, nil, WithTimeout[ResyncBlockLocaleCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), ResyncBlockLocaleCommand{BlockID: uuid.New(), Locale: "es"})
	if !errors.Is(err, errStoreBusy) {
		t.Fatalf("expected store error after exhausting retries, got %v", err)
	}
	if got := svc.calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

// missingPage rejects every page resync as not found.
type missingPage struct {
	translations.Service
	calls atomic.Int32
}

func (m *missingPage) ResyncPage(_ context.Context, pageID uuid.UUID) (translations.ResyncReport, error) {
	m.calls.Add(1)
	return translations.ResyncReport{}, domain.NotFound("page", pageID.String())
}

func TestDispatcherDoesNotRetryDomainRejections(t *testing.T) {
	svc := &missingPage{}
	handler := NewResyncPageHandler(svc, nil, WithTimeout[ResyncPageCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(3))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), ResyncPageCommand{PageID: uuid.New()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := svc.calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}
