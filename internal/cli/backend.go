package cli

import (
	"context"
	"fmt"
	"log/slog"

	"transitdash/internal/cache"
	"transitdash/internal/config"
	"transitdash/internal/dashboard"
	"transitdash/internal/metrics"
	"transitdash/pkg/transitapi"
)

// backend is the data path shared by every command: the REST client, the
// optional response cache in front of it and the process metrics.
type backend struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *transitapi.Client
	source  dashboard.Source
	store   cache.Store
	warmer  *cache.Warmer
}

func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, withCache bool) (*backend, error) {
	b := &backend{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	b.client = transitapi.New(cfg.TransitAPIURL, cfg.TransitAPITimeout,
		transitapi.WithObserver(b.metrics),
		transitapi.WithLogger(logger),
	)
	b.source = b.client

	if !withCache || !cfg.CacheEnabled {
		return b, nil
	}

	if cfg.RedisEnabled {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		b.store = rs
	} else {
		b.store = cache.NewMemoryStore(cfg.CacheTTL)
	}

	cached := cache.NewSource(b.client, b.store, cfg.CacheTTL, b.metrics, logger)
	b.source = cached
	b.warmer = cache.NewWarmer(cached, logger)
	return b, nil
}

func (b *backend) dashboardOptions() []dashboard.Option {
	return []dashboard.Option{
		dashboard.WithLogger(b.logger),
		dashboard.WithClockInterval(b.cfg.ClockInterval),
		dashboard.WithBaseURL(b.client.BaseURL()),
	}
}

func (b *backend) Close() {
	if b.store == nil {
		return
	}
	if err := b.store.Close(); err != nil {
		b.logger.Error("closing cache store failed", "error", err)
	}
}
