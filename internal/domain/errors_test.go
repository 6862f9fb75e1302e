package domain_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

var errTitleRequired = errors.New("pages: title required")

func TestValidationErrorMatchesKindAndSentinel(t *testing.T) {
	err := domain.Invalid("page", "title", errTitleRequired)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if !errors.Is(err, errTitleRequired) {
		t.Fatalf("expected module sentinel to match")
	}
	if got := err.Error(); got != "page.title: pages: title required" {
		t.Fatalf("unexpected message %q", got)
	}
	var target *domain.ValidationError
	if !errors.As(err, &target) || target.Field != "title" {
		t.Fatalf("expected field context, got %+v", target)
	}
}

func TestIsDomainErrorSeparatesStoreFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", domain.NotFound("block", "x"), true},
		{"conflict", domain.Conflict("page", "slug", "home"), true},
		{"batch", domain.Batch("reorder", 2, domain.NotFound("block", "y")), true},
		{"sync", &domain.SyncError{Locale: "es", Err: errors.New("bad json")}, true},
		{"wrapped", fmt.Errorf("update: %w", domain.NotFound("page", "p")), true},
		{"store", errors.New("disk full"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.IsDomainError(tc.err); got != tc.want {
				t.Fatalf("IsDomainError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBatchErrorKeepsCause(t *testing.T) {
	err := domain.Batch("reorder", 1, domain.NotFound("block", "b"))
	if !errors.Is(err, domain.ErrBatchRejected) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected batch and not found kinds, got %v", err)
	}
	if code := domain.TextCode(err); code != "CMS_BATCH_REJECTED" {
		t.Fatalf("unexpected text code %q", code)
	}
}

func TestWrapCategorizes(t *testing.T) {
	err := domain.Wrap(domain.Invalid("block", "content", errors.New("type mismatch")), "update block")
	if !goerrors.IsWrapped(err) {
		t.Fatalf("expected go-errors wrapper, got %T", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category")
	}
	if domain.Wrap(nil, "noop") != nil {
		t.Fatalf("expected nil passthrough")
	}
}
