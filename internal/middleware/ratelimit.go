package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Recorder is told about every rejected request or action.
type Recorder interface {
	RateLimited()
}

// RateLimiter is a fixed window limiter keyed by an arbitrary string: the
// client IP for HTTP requests, the session id for websocket actions.
type RateLimiter struct {
	mu        sync.RWMutex
	clients   map[string]*client
	rate      int           // requests per window
	window    time.Duration // time window
	cleanup   time.Duration // cleanup interval
	whitelist map[string]struct{}
	recorder  Recorder
	logger    *slog.Logger
}

type client struct {
	tokens    int
	lastReset time.Time
}

type Option func(*RateLimiter)

func WithWhitelist(keys []string) Option {
	return func(rl *RateLimiter) {
		for _, k := range keys {
			k = strings.TrimSpace(k)
			if k != "" {
				rl.whitelist[k] = struct{}{}
			}
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(rl *RateLimiter) { rl.recorder = r }
}

// NewRateLimiter allows rate requests per window and key. Idle keys are
// forgotten by a cleanup goroutine that runs until ctx is done.
func NewRateLimiter(ctx context.Context, rate int, window time.Duration, logger *slog.Logger, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		clients:   make(map[string]*client),
		rate:      rate,
		window:    window,
		cleanup:   window * 2,
		whitelist: make(map[string]struct{}),
		logger:    logger.With("component", "rate_limiter"),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go rl.cleanupLoop(ctx)

	return rl
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.lastReset) > rl.cleanup {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) IsWhitelisted(key string) bool {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	_, ok := rl.whitelist[key]
	return ok
}

// Allow consumes a token for key. A rejection is reported to the recorder.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.allow(key, time.Now()) {
		return true
	}
	if rl.recorder != nil {
		rl.recorder.RateLimited()
	}
	return false
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if _, ok := rl.whitelist[key]; ok {
		return true
	}

	c, exists := rl.clients[key]
	if !exists {
		rl.clients[key] = &client{
			tokens:    rl.rate - 1,
			lastReset: now,
		}
		return rl.rate > 0
	}

	if now.Sub(c.lastReset) > rl.window {
		c.tokens = rl.rate - 1
		c.lastReset = now
		return rl.rate > 0
	}

	if c.tokens > 0 {
		c.tokens--
		return true
	}

	return false
}

// Forget drops the bucket of key, e.g. when a session ends.
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.clients, key)
}

// Middleware rate limits HTTP requests by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !rl.Allow(ip) {
			rl.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", retryAfter(rl.window))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ClientIP resolves the caller address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (from reverse proxy). Example: "client, proxy1, proxy2"
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if host, _, err := net.SplitHostPort(first); err == nil {
			return host
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

type LimiterStats struct {
	TrackedKeys      int     `json:"tracked_keys"`
	RatePerWindow    int     `json:"rate_per_window"`
	WindowSeconds    float64 `json:"window_seconds"`
	WhitelistEntries int     `json:"whitelist_entries"`
}

func (rl *RateLimiter) Stats() LimiterStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return LimiterStats{
		TrackedKeys:      len(rl.clients),
		RatePerWindow:    rl.rate,
		WindowSeconds:    rl.window.Seconds(),
		WhitelistEntries: len(rl.whitelist),
	}
}
