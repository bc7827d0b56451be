package handler

import (
	"log/slog"
	"net/http"

	"transitdash/internal/metrics"
	"transitdash/internal/middleware"
)

type Routes struct {
	Views   *ViewsHandler
	WS      *WSHandler
	Health  *HealthHandler
	Stats   *StatsHandler
	Metrics http.Handler

	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Counters    *metrics.Stats
	Logger      *slog.Logger
}

// NewRouter mounts every endpoint. The websocket route bypasses gzip so the
// upgrade reaches the raw connection.
func NewRouter(rt Routes) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /v1/views", rt.Views.ListViews)
	api.HandleFunc("GET /v1/views/{name}", rt.Views.RenderView)
	api.HandleFunc("GET /v1/stats", rt.Stats.GetStats)
	api.HandleFunc("GET /healthz", rt.Health.Healthz)
	api.HandleFunc("GET /readyz", rt.Health.Readyz)
	if rt.Metrics != nil {
		api.Handle("GET /metrics", rt.Metrics)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", rt.WS.ServeWS)
	mux.Handle("/", GzipMiddleware(api))

	var h http.Handler = mux
	if rt.Limiter != nil {
		h = rt.Limiter.Middleware(h)
	}
	h = CORSMiddleware(rt.CORSOrigins)(h)
	return RequestLogger(rt.Counters, rt.Logger)(h)
}
