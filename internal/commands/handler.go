// Package commands exposes editor operations as go-command messages so they
// can be dispatched from CLIs, queues or HTTP adapters.
package commands

import (
	"context"
	"maps"
	"slices"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const DefaultTimeout = 30 * time.Second

type HandlerOption[T command.Message] func(*Handler[T])

// Handler validates a message, bounds its execution time and categorizes
// the error before handing it back to the dispatcher. Log entries carry the
// ids the message names and say whether a retry can help.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	now       func() time.Time
}

func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute satisfies command.Commander[T].
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := h.loggerFor(msg)
	if err := command.ValidateMessage(msg); err != nil {
		return h.report(logger, invalidMessage(err), 0)
	}
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return h.report(logger, interrupted(err), 0)
	}

	started := h.now()
	logger.Debug("command.execute.start")
	err := h.exec(ctx, msg)
	elapsed := h.now().Sub(started)
	switch {
	case err == nil:
		logger.Info("command.execute.success", "duration_ms", elapsed.Milliseconds())
		return nil
	case ctx.Err() != nil:
		return h.report(logger, interrupted(ctx.Err()), elapsed)
	default:
		return h.report(logger, rejected(err), elapsed)
	}
}

// subject is implemented by messages that name the rows they touch.
type subject interface {
	LogFields() map[string]any
}

func (h *Handler[T]) loggerFor(msg T) interfaces.Logger {
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if s, ok := any(msg).(subject); ok {
		maps.Copy(fields, s.LogFields())
	}
	return logging.WithFields(h.logger, fields)
}

// report logs f and returns its error. Final outcomes describe the request,
// so they are warnings; everything else is an error worth retrying.
func (h *Handler[T]) report(logger interfaces.Logger, f failure, elapsed time.Duration) error {
	keys := slices.Sorted(maps.Keys(f.fields))
	args := make([]any, 0, 2*len(keys)+6)
	for _, key := range keys {
		args = append(args, key, f.fields[key])
	}
	args = append(args, "error", f.err, "retryable", !f.final, "duration_ms", elapsed.Milliseconds())
	if f.final {
		logger.Warn("command.execute.rejected", args...)
	} else {
		logger.Error("command.execute.failed", args...)
	}
	return f.err
}

// WithTimeout overrides DefaultTimeout. Zero or less disables the deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout < 0 {
			timeout = 0
		}
		h.timeout = timeout
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) { h.operation = operation }
}

func (h *Handler[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}
