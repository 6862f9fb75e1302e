// Package zaplogger backs the CMS logging contract with zap.
package zaplogger

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

// Provider names child loggers after CMS modules.
type Provider struct {
	base *zap.Logger
}

// New wraps an existing zap logger. A nil logger becomes zap.NewNop.
func New(base *zap.Logger) *Provider {
	if base == nil {
		base = zap.NewNop()
	}
	return &Provider{base: base}
}

// NewFromConfig builds a production (json) or development (console) logger.
func NewFromConfig(level, format string) (*Provider, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(logger), nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	logger := p.base
	if name = strings.TrimSpace(name); name != "" {
		logger = logger.Named(name)
	}
	return &sugared{s: logger.Sugar()}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error { return p.base.Sync() }

type sugared struct {
	s *zap.SugaredLogger
}

var _ interfaces.FieldsLogger = (*sugared)(nil)

func (l *sugared) Trace(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *sugared) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *sugared) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l *sugared) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l *sugared) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
func (l *sugared) Fatal(msg string, args ...any) { l.s.Fatalw(msg, args...) }

func (l *sugared) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &sugared{s: l.s.With(args...)}
}

// zap has no context binding; context fields are attached by logging.ForContext.
func (l *sugared) WithContext(context.Context) interfaces.Logger { return l }
