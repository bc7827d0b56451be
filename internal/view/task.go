package view

import (
	"context"
	"log/slog"
)

// Completion applies a finished fetch to the controller that issued it. It
// must run on the goroutine that owns the controller and reports false when
// the result was discarded because a newer request superseded it.
type Completion func() bool

// Task performs a fetch away from the owning goroutine and returns the
// completion to apply.
type Task func(ctx context.Context) Completion

// Run executes t and applies its completion on the calling goroutine.
func Run(ctx context.Context, t Task) bool {
	if t == nil {
		return false
	}
	return t(ctx)()
}

// tagger hands out request sequence numbers. A completion is current only
// while its tag is the latest one issued.
type tagger struct {
	seq uint64
}

func (t *tagger) next() uint64 {
	t.seq++
	return t.seq
}

func (t *tagger) current(tag uint64) bool {
	return tag == t.seq
}

type options struct {
	logger   *slog.Logger
	pageSize int
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

func buildOptions(component, name string, opts []Option) options {
	o := options{
		logger:   slog.Default(),
		pageSize: PageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component, "view", name)
	return o
}
