package commands

import (
	"context"
	"errors"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storefront-cms/internal/domain"
)

// Text codes raised by the command layer itself. Errors coming out of the
// services keep the CMS_* code from domain.TextCode.
const (
	codeInvalidMessage = "COMMAND_INVALID_MESSAGE"
	codeCanceled       = "COMMAND_CANCELED"
	codeTimedOut       = "COMMAND_TIMED_OUT"
	codeStoreFailure   = "COMMAND_STORE_FAILURE"
)

// failure is a categorized command error together with the fields its log
// entry carries. final marks outcomes a retry cannot change.
type failure struct {
	err    error
	final  bool
	fields map[string]any
}

// seal categorizes err. Final errors are returned as non-retryable so the
// dispatcher's runner stops after the first attempt; the rest keep an
// existing go-errors wrapping.
func seal(err error, category goerrors.Category, message, code string, final bool) error {
	if final {
		return goerrors.WrapRetryable(err, category, message).
			WithRetryable(false).
			WithTextCode(code)
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func invalidMessage(err error) failure {
	f := failure{final: true, fields: map[string]any{"code": codeInvalidMessage}}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		names := make([]string, 0, len(fieldErrs))
		for name := range fieldErrs {
			names = append(names, name)
		}
		slices.Sort(names)
		f.fields["invalid_fields"] = names
	}
	f.err = seal(err, goerrors.CategoryValidation, "invalid command message", codeInvalidMessage, true)
	return f
}

func interrupted(err error) failure {
	code, message := codeCanceled, "command canceled"
	if errors.Is(err, context.DeadlineExceeded) {
		code, message = codeTimedOut, "command timed out"
	}
	return failure{
		err:    seal(err, goerrors.CategoryCommand, message, code, false),
		fields: map[string]any{"code": code},
	}
}

// rejected maps an error returned by a service. Domain errors keep their
// category and sentinel and are final; anything else is a store or runtime
// failure that a retry may clear.
func rejected(err error) failure {
	f := failure{fields: map[string]any{"code": domain.TextCode(err)}}

	var (
		batch    *domain.BatchError
		syncErr  *domain.SyncError
		notFound *domain.NotFoundError
		conflict *domain.ConflictError
		invalid  *domain.ValidationError
	)
	switch {
	case errors.As(err, &batch):
		f.final = true
		f.fields["batch_operation"] = batch.Operation
		f.fields["batch_index"] = batch.Index
	case errors.As(err, &syncErr):
		// the translation itself is unreadable; the row already records why
		f.final = true
		f.fields["block_id"] = syncErr.BlockID
		f.fields["locale"] = syncErr.Locale
	case errors.As(err, &notFound):
		f.final = true
		f.fields["resource"] = notFound.Resource
		f.fields["key"] = notFound.Key
	case errors.As(err, &conflict):
		f.final = true
		f.fields["resource"] = conflict.Resource
		f.fields["field"] = conflict.Field
	case errors.As(err, &invalid):
		f.final = true
		f.fields["resource"] = invalid.Resource
		f.fields["field"] = invalid.Field
	}

	if f.final {
		f.err = seal(err, domain.Category(err), "command rejected", domain.TextCode(err), true)
		return f
	}
	f.fields["code"] = codeStoreFailure
	f.err = seal(err, goerrors.CategoryCommand, "command failed in store", codeStoreFailure, false)
	return f
}
