package domain

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Error kinds shared by every CMS module. Typed errors below unwrap to one of
// these so callers can branch with errors.Is regardless of the module that
// produced the failure.
var (
	ErrNotFound      = errors.New("cms: not found")
	ErrValidation    = errors.New("cms: validation failed")
	ErrConflict      = errors.New("cms: conflict")
	ErrSyncFailed    = errors.New("cms: translation sync failed")
	ErrBatchRejected = errors.New("cms: batch rejected")
)

// NotFoundError reports a missing page, block, version or translation.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// ValidationError reports input rejected before any write. Err carries the
// module sentinel (e.g. pages.ErrSlugRequired).
type ValidationError struct {
	Resource string
	Field    string
	Err      error
}

func (e *ValidationError) Error() string {
	msg := "invalid input"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Resource, msg)
	}
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Field, msg)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// Invalid builds a ValidationError.
func Invalid(resource, field string, err error) error {
	return &ValidationError{Resource: resource, Field: field, Err: err}
}

// ConflictError reports a duplicate unique key.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflict builds a ConflictError.
func Conflict(resource, field, value string) error {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// SyncError records a translation that could not be merged against its base
// block. It is never returned from a content update; it is logged and stored
// on the translation row.
type SyncError struct {
	BlockID uuid.UUID
	Locale  string
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync block %s locale %s: %v", e.BlockID, e.Locale, e.Err)
}

func (e *SyncError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSyncFailed}
	}
	return []error{ErrSyncFailed, e.Err}
}

// BatchError rejects a whole bulk call. Index points at the first offending item.
type BatchError struct {
	Operation string
	Index     int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: item %d rejected: %v", e.Operation, e.Index, e.Err)
}

func (e *BatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBatchRejected}
	}
	return []error{ErrBatchRejected, e.Err}
}

// Batch builds a BatchError.
func Batch(operation string, index int, err error) error {
	return &BatchError{Operation: operation, Index: index, Err: err}
}

// IsDomainError reports whether err belongs to the CMS taxonomy. Anything else
// is an internal store or runtime failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSyncFailed) ||
		errors.Is(err, ErrBatchRejected)
}

// Category maps err onto the go-errors category used by transports.
func Category(err error) goerrors.Category {
	switch {
	case err == nil:
		return goerrors.CategoryInternal
	case errors.Is(err, ErrNotFound):
		return goerrors.CategoryNotFound
	case errors.Is(err, ErrConflict):
		return goerrors.CategoryConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBatchRejected):
		return goerrors.CategoryValidation
	default:
		return goerrors.CategoryInternal
	}
}

// TextCode returns a stable machine code for err, e.g. CMS_NOT_FOUND.
func TextCode(err error) string {
	switch {
	case errors.Is(err, ErrBatchRejected):
		return "CMS_BATCH_REJECTED"
	case errors.Is(err, ErrNotFound):
		return "CMS_NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CMS_CONFLICT"
	case errors.Is(err, ErrValidation):
		return "CMS_VALIDATION"
	case errors.Is(err, ErrSyncFailed):
		return "CMS_SYNC_FAILED"
	default:
		return "CMS_INTERNAL"
	}
}

// Wrap converts err into a categorized go-errors value carrying message as the
// outer description. Already categorized errors are returned untouched.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = err.Error()
	}
	return goerrors.Wrap(err, Category(err), message).WithTextCode(TextCode(err))
}
