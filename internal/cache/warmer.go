package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Warmer preloads the cached collections so the first session to open a
// list view does not pay for the upstream fetch.
type Warmer struct {
	source *Source
	logger *slog.Logger
}

func NewWarmer(source *Source, logger *slog.Logger) *Warmer {
	return &Warmer{
		source: source,
		logger: logger.With("component", "cache_warmer"),
	}
}

// WarmAll refreshes every collection. A failing collection is logged and
// skipped; the joined errors are returned once all were attempted.
func (w *Warmer) WarmAll(ctx context.Context) error {
	start := time.Now()
	w.logger.Info("starting cache warming")

	var errs []error
	for _, key := range Keys {
		keyStart := time.Now()
		n, err := w.source.refresh(ctx, key)
		if err != nil {
			w.logger.Error("failed to warm collection", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		w.logger.Info("warmed collection",
			"key", key,
			"items", n,
			"duration_ms", time.Since(keyStart).Milliseconds(),
		)
	}

	w.logger.Info("cache warming completed",
		"failed", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return errors.Join(errs...)
}

// ScheduleRefresh rewarms the cache every interval until ctx is done.
func (w *Warmer) ScheduleRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	for {
		w.logger.Info("scheduled next cache refresh", "in", interval)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			if err := w.WarmAll(ctx); err != nil {
				w.logger.Error("cache refresh failed", "error", err)
			}
		}
	}
}
