package cache

import (
	"context"
	"log/slog"
	"time"

	"transitdash/internal/dashboard"
	"transitdash/internal/domain"
)

// Recorder receives cache lookup outcomes. *metrics.Metrics implements it.
type Recorder interface {
	CacheHit()
	CacheMiss()
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()  {}
func (nopRecorder) CacheMiss() {}

// Source serves the four static collections from a Store and passes every
// other call straight to the wrapped source. An upstream failure is always
// returned; an expired entry is never served in its place.
type Source struct {
	dashboard.Source

	store    Store
	ttl      time.Duration
	recorder Recorder
	logger   *slog.Logger
}

func NewSource(upstream dashboard.Source, store Store, ttl time.Duration, recorder Recorder, logger *slog.Logger) *Source {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Source{
		Source:   upstream,
		store:    store,
		ttl:      ttl,
		recorder: recorder,
		logger:   logger.With("component", "cached_source"),
	}
}

func (s *Source) Routes(ctx context.Context) ([]domain.Route, error) {
	return cached(ctx, s, KeyRoutes, s.Source.Routes)
}

func (s *Source) Stops(ctx context.Context) ([]domain.Stop, error) {
	return cached(ctx, s, KeyStops, s.Source.Stops)
}

func (s *Source) Trips(ctx context.Context) ([]domain.Trip, error) {
	return cached(ctx, s, KeyTrips, s.Source.Trips)
}

func (s *Source) Calendars(ctx context.Context) ([]domain.Calendar, error) {
	return cached(ctx, s, KeyCalendars, s.Source.Calendars)
}

func cached[T any](ctx context.Context, s *Source, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	var items []T
	found, err := s.store.GetJSON(ctx, key, &items)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	}
	if found && err == nil {
		s.recorder.CacheHit()
		return items, nil
	}
	s.recorder.CacheMiss()

	items, err = fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, items)
	return items, nil
}

func (s *Source) put(ctx context.Context, key string, value any) {
	if err := s.store.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// refresh fetches key from upstream and replaces the cached copy.
func (s *Source) refresh(ctx context.Context, key string) (int, error) {
	var (
		value any
		n     int
		err   error
	)
	switch key {
	case KeyRoutes:
		var v []domain.Route
		v, err = s.Source.Routes(ctx)
		value, n = v, len(v)
	case KeyStops:
		var v []domain.Stop
		v, err = s.Source.Stops(ctx)
		value, n = v, len(v)
	case KeyTrips:
		var v []domain.Trip
		v, err = s.Source.Trips(ctx)
		value, n = v, len(v)
	case KeyCalendars:
		var v []domain.Calendar
		v, err = s.Source.Calendars(ctx)
		value, n = v, len(v)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := s.store.SetJSON(ctx, key, value, s.ttl); err != nil {
		return 0, err
	}
	return n, nil
}
