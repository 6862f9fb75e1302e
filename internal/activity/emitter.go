// Package activity turns CMS mutations into go-users audit records.
package activity

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

const Channel = "cms"

// Event describes one mutation. ActorID is the acting user supplied by the
// caller and may be uuid.Nil.
type Event struct {
	Verb       string
	ObjectType string
	ObjectID   uuid.UUID
	ActorID    uuid.UUID
	Data       map[string]any
}

// Emitter forwards events to a sink. A nil Emitter or one without a sink
// drops events. Sink failures are logged and never fail the mutation.
type Emitter struct {
	sink   interfaces.ActivitySink
	logger interfaces.Logger
	now    func() time.Time
}

type Option func(*Emitter)

func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(sink interfaces.ActivitySink, opts ...Option) *Emitter {
	e := &Emitter{sink: sink, logger: logging.NoOp(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.sink == nil || strings.TrimSpace(event.Verb) == "" {
		return
	}
	record := interfaces.ActivityRecord{
		ActorID:    event.ActorID,
		UserID:     event.ActorID,
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID.String(),
		Channel:    Channel,
		Data:       maps.Clone(event.Data),
		OccurredAt: e.now().UTC(),
	}
	if err := e.sink.Log(ctx, record); err != nil {
		e.logger.Warn("activity.emit.failed",
			"verb", event.Verb,
			"object_type", event.ObjectType,
			"object_id", record.ObjectID,
			"error", err,
		)
	}
}
