package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"transitdash/internal/handler"
	"transitdash/internal/middleware"
	"transitdash/internal/session"
)

func NewServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd.Context())
		},
	}
}

func (app *App) serve(parent context.Context) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}

	logger := cfg.Logger()
	logger.Info("starting transitdash server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"transit_api_url", cfg.TransitAPIURL,
		"cache_enabled", cfg.CacheEnabled,
		"redis_enabled", cfg.RedisEnabled,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	b, err := newBackend(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer b.Close()

	if b.warmer != nil {
		if cfg.CacheWarmOnStart {
			if err := b.warmer.WarmAll(ctx); err != nil {
				logger.Warn("cache warm failed", "error", err)
			}
		}
		go b.warmer.ScheduleRefresh(ctx, cfg.CacheRefreshInterval)
	}

	wsHub := session.NewHub(logger)

	var httpLimiter, actionLimiter *middleware.RateLimiter
	if cfg.RateLimitPerWindow > 0 {
		httpLimiter = middleware.NewRateLimiter(ctx, cfg.RateLimitPerWindow, cfg.RateLimitWindow, logger,
			middleware.WithWhitelist(cfg.RateLimitWhitelist),
			middleware.WithRecorder(b.metrics),
		)
	}
	if cfg.SessionActionsPerWindow > 0 {
		actionLimiter = middleware.NewRateLimiter(ctx, cfg.SessionActionsPerWindow, cfg.RateLimitWindow, logger,
			middleware.WithRecorder(b.metrics),
		)
	}

	sessionCfg := session.Config{
		Limiter:   actionLimiter,
		Recorder:  b.metrics,
		Logger:    logger,
		Dashboard: b.dashboardOptions(),
	}

	routes := handler.Routes{
		Views:       handler.NewViewsHandler(b.source, cfg.WriteTimeout, logger, b.dashboardOptions()...),
		WS:          handler.NewWSHandler(wsHub, b.source, sessionCfg, cfg.CORSOrigins, b.metrics.Stats, logger),
		Health:      handler.NewHealthHandler(b.client, b.client.BaseURL()),
		Stats:       handler.NewStatsHandler(b.metrics.Stats, wsHub, httpLimiter),
		Limiter:     httpLimiter,
		CORSOrigins: cfg.CORSOrigins,
		Counters:    b.metrics.Stats,
		Logger:      logger,
	}
	if cfg.MetricsEnabled {
		routes.Metrics = b.metrics.Handler()
	}

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     handler.NewRouter(routes),
		ReadTimeout: cfg.ReadTimeout,
		// WriteTimeout would cut long-lived websocket connections; the render
		// endpoint bounds itself with its own timeout.
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go wsHub.Run(hubCtx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	case err := <-serveErr:
		logger.Error("HTTP server error", "error", err)
		return err
	}

	wsHub.Broadcast("server shutting down")
	stopHub()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	logger.Info("shutdown complete")
	return nil
}
