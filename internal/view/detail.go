package view

import (
	"context"
	"time"
)

// DetailController looks up a single record by key. The source answers with
// a collection; the first element is the record and an empty collection
// means the key was not found.
type DetailController[K comparable, T any] struct {
	name  string
	fetch func(context.Context, K) ([]T, error)
	opts  options

	key    K
	hasKey bool
	record T
	found  bool
	status Status
	err    error
	tags   tagger
}

func NewDetail[K comparable, T any](name string, fetch func(context.Context, K) ([]T, error), opts ...Option) *DetailController[K, T] {
	return &DetailController[K, T]{
		name:  name,
		fetch: fetch,
		opts:  buildOptions("detail_view", name, opts),
	}
}

// Select clears the previous record and starts fetching key. It supersedes
// any lookup still in flight.
func (c *DetailController[K, T]) Select(key K) Task {
	tag := c.tags.next()
	var zero T
	c.key, c.hasKey = key, true
	c.record, c.found = zero, false
	c.err = nil
	c.status = StatusLoading

	c.opts.logger.Debug("detail fetch started", "key", key, "tag", tag)

	fetch := c.fetch
	return func(ctx context.Context) Completion {
		start := time.Now()
		records, err := fetch(ctx, key)
		elapsed := time.Since(start)
		return func() bool {
			return c.finish(tag, records, err, elapsed)
		}
	}
}

func (c *DetailController[K, T]) finish(tag uint64, records []T, err error, elapsed time.Duration) bool {
	if !c.tags.current(tag) {
		c.opts.logger.Debug("stale detail response discarded", "tag", tag)
		return false
	}

	if err != nil {
		c.status = StatusError
		c.err = fetchFailed(c.name, err)
		c.opts.logger.Debug("detail fetch failed", "key", c.key, "error", err, "duration_ms", elapsed.Milliseconds())
		return true
	}

	c.status = StatusReady
	if len(records) > 0 {
		c.record, c.found = records[0], true
	}
	c.opts.logger.Debug("detail fetch completed",
		"key", c.key,
		"found", c.found,
		"duration_ms", elapsed.Milliseconds(),
	)
	return true
}

// Close forgets the selection and any lookup in flight.
func (c *DetailController[K, T]) Close() {
	c.tags.next()
	var zeroK K
	var zeroT T
	c.key, c.hasKey = zeroK, false
	c.record, c.found = zeroT, false
	c.err = nil
	c.status = StatusIdle
}

func (c *DetailController[K, T]) Key() (K, bool) { return c.key, c.hasKey }

// Record returns the looked up record. ok is false while loading, after a
// failure, or when the key was not found.
func (c *DetailController[K, T]) Record() (T, bool) { return c.record, c.found }

func (c *DetailController[K, T]) Name() string   { return c.name }
func (c *DetailController[K, T]) Status() Status { return c.status }
func (c *DetailController[K, T]) Err() error     { return c.err }
