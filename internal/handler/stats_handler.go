package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"transitdash/internal/metrics"
	"transitdash/internal/middleware"
)

// Version is reported on the stats endpoint.
const Version = "1.0.0"

// SessionCounter reports live websocket sessions.
type SessionCounter interface {
	SessionCount() int
}

type StatsHandler struct {
	stats    *metrics.Stats
	sessions SessionCounter
	limiter  *middleware.RateLimiter
}

func NewStatsHandler(stats *metrics.Stats, sessions SessionCounter, limiter *middleware.RateLimiter) *StatsHandler {
	return &StatsHandler{
		stats:    stats,
		sessions: sessions,
		limiter:  limiter,
	}
}

type StatsResponse struct {
	Server    ServerStatsResponse      `json:"server"`
	WebSocket WebSocketStatsResponse   `json:"websocket"`
	Upstream  UpstreamStatsResponse    `json:"upstream"`
	Dashboard DashboardStatsResponse   `json:"dashboard"`
	Cache     CacheStatsResponse       `json:"cache"`
	RateLimit *middleware.LimiterStats `json:"rate_limit,omitempty"`
	Go        GoStatsResponse          `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	RequestCount  int64     `json:"request_count"`
	RateLimited   int64     `json:"rate_limited"`
	Version       string    `json:"version"`
}

type WebSocketStatsResponse struct {
	Sessions    int   `json:"sessions"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
}

type UpstreamStatsResponse struct {
	Fetches  int64 `json:"fetches"`
	Failures int64 `json:"failures"`
}

type DashboardStatsResponse struct {
	Actions        int64 `json:"actions"`
	StaleDiscarded int64 `json:"stale_discarded"`
}

type CacheStatsResponse struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"hit_ratio"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.stats.Snapshot()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        snap.Uptime.Round(time.Second).String(),
			UptimeSeconds: snap.Uptime.Seconds(),
			StartTime:     snap.StartTime,
			RequestCount:  snap.Requests,
			RateLimited:   snap.RateLimitBlocked,
			Version:       Version,
		},
		WebSocket: WebSocketStatsResponse{
			MessagesIn:  snap.WSMessagesIn,
			MessagesOut: snap.WSMessagesOut,
		},
		Upstream: UpstreamStatsResponse{
			Fetches:  snap.Fetches,
			Failures: snap.FetchFailures,
		},
		Dashboard: DashboardStatsResponse{
			Actions:        snap.Actions,
			StaleDiscarded: snap.StaleDiscarded,
		},
		Cache: CacheStatsResponse{
			Hits:   snap.CacheHits,
			Misses: snap.CacheMisses,
			Ratio:  snap.CacheHitRatio(),
		},
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}
	if h.sessions != nil {
		response.WebSocket.Sessions = h.sessions.SessionCount()
	}
	if h.limiter != nil {
		ls := h.limiter.Stats()
		response.RateLimit = &ls
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(response)
}
