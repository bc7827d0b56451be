package view

import (
	"context"
	"time"
)

// QueryHooks customise a QueryController.
type QueryHooks[Q, R any] struct {
	// Normalize rewrites raw input before it is validated and sent.
	Normalize func(Q) Q
	// Validate replaces the struct tag validation done by ValidateStruct.
	Validate func(Q) error
	// OnChange runs whenever the result set changes, with the zero R when it
	// is cleared. Views reset their dependent sub-list pagers here.
	OnChange func(R)
}

// QueryController holds user input for a parameterised fetch and the result
// of the last submitted query. Input never triggers a fetch on its own.
type QueryController[Q, R any] struct {
	name  string
	fetch func(context.Context, Q) (R, error)
	hooks QueryHooks[Q, R]
	opts  options

	input     Q
	submitted Q
	result    R
	hasResult bool
	status    Status
	err       error
	tags      tagger
}

func NewQuery[Q, R any](name string, fetch func(context.Context, Q) (R, error), hooks QueryHooks[Q, R], opts ...Option) *QueryController[Q, R] {
	if hooks.Validate == nil {
		hooks.Validate = func(q Q) error { return ValidateStruct(q) }
	}
	return &QueryController[Q, R]{
		name:  name,
		fetch: fetch,
		hooks: hooks,
		opts:  buildOptions("range_query", name, opts),
	}
}

// SetInput stores raw user input.
func (c *QueryController[Q, R]) SetInput(q Q) { c.input = q }

func (c *QueryController[Q, R]) Input() Q { return c.input }

// Submit validates the normalized input and returns the fetch task. When
// validation fails it records a ValidationFailed error and returns nil; no
// fetch is issued. Either way any earlier request still in flight is
// superseded.
func (c *QueryController[Q, R]) Submit() Task {
	tag := c.tags.next()

	q := c.input
	if c.hooks.Normalize != nil {
		q = c.hooks.Normalize(q)
	}

	if err := c.hooks.Validate(q); err != nil {
		c.status = StatusError
		c.err = err
		c.opts.logger.Debug("query rejected", "error", err)
		return nil
	}

	c.submitted = q
	c.setResult(*new(R), false)
	c.err = nil
	c.status = StatusLoading

	c.opts.logger.Debug("query fetch started", "tag", tag)

	fetch := c.fetch
	return func(ctx context.Context) Completion {
		start := time.Now()
		result, err := fetch(ctx, q)
		elapsed := time.Since(start)
		return func() bool {
			return c.finish(tag, result, err, elapsed)
		}
	}
}

func (c *QueryController[Q, R]) finish(tag uint64, result R, err error, elapsed time.Duration) bool {
	if !c.tags.current(tag) {
		c.opts.logger.Debug("stale query response discarded", "tag", tag)
		return false
	}

	if err != nil {
		c.status = StatusError
		c.err = fetchFailed(c.name, err)
		c.opts.logger.Debug("query fetch failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return true
	}

	c.status = StatusReady
	c.setResult(result, true)
	c.opts.logger.Debug("query fetch completed", "duration_ms", elapsed.Milliseconds())
	return true
}

func (c *QueryController[Q, R]) setResult(r R, ok bool) {
	c.result, c.hasResult = r, ok
	if c.hooks.OnChange != nil {
		c.hooks.OnChange(r)
	}
}

// Close discards input, result and any request in flight.
func (c *QueryController[Q, R]) Close() {
	c.tags.next()
	var zero Q
	c.input, c.submitted = zero, zero
	c.setResult(*new(R), false)
	c.err = nil
	c.status = StatusIdle
}

// Result returns the result of the last submitted query once it has arrived.
func (c *QueryController[Q, R]) Result() (R, bool) { return c.result, c.hasResult }

// Submitted returns the normalized query the current result belongs to.
func (c *QueryController[Q, R]) Submitted() Q { return c.submitted }

func (c *QueryController[Q, R]) Name() string   { return c.name }
func (c *QueryController[Q, R]) Status() Status { return c.status }
func (c *QueryController[Q, R]) Err() error     { return c.err }
