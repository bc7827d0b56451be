package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct{ n int }

func (c *countingRecorder) RateLimited() { c.n++ }

func newLimiter(t *testing.T, rate int, window time.Duration, opts ...Option) *RateLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, rate, window, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func TestAllowWithinWindow(t *testing.T) {
	rec := &countingRecorder{}
	rl := newLimiter(t, 3, time.Minute, WithRecorder(rec))

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 1, rec.n)
}

func TestWindowResets(t *testing.T) {
	rl := newLimiter(t, 1, time.Minute)
	now := time.Now()

	assert.True(t, rl.allow("a", now))
	assert.False(t, rl.allow("a", now.Add(time.Second)))
	assert.True(t, rl.allow("a", now.Add(2*time.Minute)))
}

func TestWhitelistAndForget(t *testing.T) {
	rl := newLimiter(t, 1, time.Minute, WithWhitelist([]string{" 10.0.0.1 ", ""}))

	for range 5 {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	assert.True(t, rl.IsWhitelisted("10.0.0.1"))

	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))
	rl.Forget("s1")
	assert.True(t, rl.Allow("s1"))

	stats := rl.Stats()
	assert.Equal(t, 1, stats.TrackedKeys)
	assert.Equal(t, 1, stats.WhitelistEntries)
}

func TestSweepDropsIdleKeys(t *testing.T) {
	rl := newLimiter(t, 5, time.Minute)
	now := time.Now()
	rl.allow("old", now.Add(-10*time.Minute))
	rl.allow("fresh", now)

	rl.sweep(now)
	assert.Equal(t, 1, rl.Stats().TrackedKeys)
}

func TestMiddleware(t *testing.T) {
	rl := newLimiter(t, 1, 30*time.Second)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/views", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "[2001:db8::1]:443")
	assert.Equal(t, "2001:db8::1", ClientIP(req))
}
