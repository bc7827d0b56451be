package view

import (
	"context"
	"time"
)

// ListController owns a fetched collection, an optional text filter and a
// page cursor over the filtered records. It is not safe for concurrent use:
// the view that owns it applies every action and completion from a single
// goroutine.
type ListController[T any] struct {
	name   string
	fetch  func(context.Context) ([]T, error)
	fields Fields[T]
	opts   options

	items   []T
	visible []T
	filter  string
	pager   Pager
	status  Status
	err     error
	tags    tagger
}

// NewList builds a list over fetch. fields picks the searchable text of a
// record; a nil fields disables filtering.
func NewList[T any](name string, fetch func(context.Context) ([]T, error), fields Fields[T], opts ...Option) *ListController[T] {
	o := buildOptions("list_view", name, opts)
	return &ListController[T]{
		name:   name,
		fetch:  fetch,
		fields: fields,
		opts:   o,
		pager:  NewPager(o.pageSize),
	}
}

// Activate starts loading the full collection. The previous collection is
// dropped so a failed load shows an empty error state.
func (c *ListController[T]) Activate() Task {
	tag := c.tags.next()
	c.items, c.visible = nil, nil
	c.err = nil
	c.status = StatusLoading
	c.pager.Reset(0)

	c.opts.logger.Debug("list fetch started", "tag", tag)

	fetch := c.fetch
	return func(ctx context.Context) Completion {
		start := time.Now()
		items, err := fetch(ctx)
		elapsed := time.Since(start)
		return func() bool {
			return c.finish(tag, items, err, elapsed)
		}
	}
}

func (c *ListController[T]) finish(tag uint64, items []T, err error, elapsed time.Duration) bool {
	if !c.tags.current(tag) {
		c.opts.logger.Debug("stale list response discarded", "tag", tag)
		return false
	}

	if err != nil {
		c.status = StatusError
		c.err = fetchFailed(c.name, err)
		c.items, c.visible = nil, nil
		c.pager.Reset(0)
		c.opts.logger.Debug("list fetch failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return true
	}

	c.items = items
	c.status = StatusReady
	c.refilter()
	c.opts.logger.Debug("list fetch completed",
		"count", len(items),
		"duration_ms", elapsed.Milliseconds(),
	)
	return true
}

// Close discards the collection and any in-flight load.
func (c *ListController[T]) Close() {
	c.tags.next()
	c.items, c.visible = nil, nil
	c.filter = ""
	c.err = nil
	c.status = StatusIdle
	c.pager.Reset(0)
}

// SetFilter recomputes the visible records and returns to page 1.
func (c *ListController[T]) SetFilter(text string) {
	c.filter = text
	c.refilter()
}

func (c *ListController[T]) refilter() {
	c.visible = Filter(c.items, c.filter, c.fields)
	c.pager.Reset(len(c.visible))
}

func (c *ListController[T]) NextPage() bool     { return c.pager.Next() }
func (c *ListController[T]) PreviousPage() bool { return c.pager.Previous() }

// Page returns the visible records of the current page.
func (c *ListController[T]) Page() []T {
	lo, hi := c.pager.Bounds(len(c.visible))
	return c.visible[lo:hi]
}

func (c *ListController[T]) Name() string         { return c.name }
func (c *ListController[T]) Filterable() bool     { return c.fields != nil }
func (c *ListController[T]) Filter() string       { return c.filter }
func (c *ListController[T]) Items() []T           { return c.items }
func (c *ListController[T]) Visible() []T         { return c.visible }
func (c *ListController[T]) PageState() PageState { return c.pager.State() }
func (c *ListController[T]) Status() Status       { return c.status }
func (c *ListController[T]) Err() error           { return c.err }
