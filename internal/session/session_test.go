package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitdash/internal/dashboard"
	"transitdash/internal/dashboard/dashboardtest"
	"transitdash/internal/middleware"
)

type recorder struct {
	mu      sync.Mutex
	opened  int
	closed  int
	actions []string
	stale   []string
}

func (r *recorder) SessionOpened() { r.mu.Lock(); r.opened++; r.mu.Unlock() }
func (r *recorder) SessionClosed() { r.mu.Lock(); r.closed++; r.mu.Unlock() }
func (r *recorder) Action(v, typ string) {
	r.mu.Lock()
	r.actions = append(r.actions, v+":"+typ)
	r.mu.Unlock()
}
func (r *recorder) StaleDiscarded(v string) {
	r.mu.Lock()
	r.stale = append(r.stale, v)
	r.mu.Unlock()
}

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startSession(t *testing.T, src dashboard.Source, cfg Config) *Session {
	t.Helper()
	cfg.Logger = quietLogger()
	s := New(context.Background(), src, cfg)
	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()
	t.Cleanup(func() {
		s.Close()
		<-done
	})
	return s
}

func next(t *testing.T, s *Session) received {
	t.Helper()
	select {
	case data := <-s.Send:
		var msg received
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message from session")
		return received{}
	}
}

// nextSnapshot skips messages until a snapshot satisfying ok arrives.
func nextSnapshot(t *testing.T, s *Session, ok func(dashboard.Snapshot) bool) dashboard.Snapshot {
	t.Helper()
	for {
		msg := next(t, s)
		if msg.Type != TypeSnapshot {
			continue
		}
		var snap dashboard.Snapshot
		require.NoError(t, json.Unmarshal(msg.Payload, &snap))
		if ok(snap) {
			return snap
		}
	}
}

func deliver(t *testing.T, s *Session, typ string, payload any) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = data
	}
	require.True(t, s.Deliver(Inbound{Type: typ, Payload: raw}))
}

func TestSessionHelloAndOpen(t *testing.T) {
	src := &dashboardtest.Source{StopsData: dashboardtest.Stops(12)}
	rec := &recorder{}
	s := startSession(t, src, Config{Recorder: rec})

	hello := next(t, s)
	require.Equal(t, TypeHello, hello.Type)
	var hp HelloPayload
	require.NoError(t, json.Unmarshal(hello.Payload, &hp))
	assert.Equal(t, s.ID, hp.SessionID)
	assert.Len(t, hp.Views, len(dashboard.Catalog()))

	deliver(t, s, TypeOpen, ViewPayload{View: "stops"})
	snap := nextSnapshot(t, s, func(sn dashboard.Snapshot) bool { return sn.Status.String() == "ready" })
	tbl, ok := snap.Table("stops")
	require.True(t, ok)
	assert.Len(t, tbl.Rows, 10)

	deliver(t, s, TypeAction, dashboard.Action{Type: dashboard.ActionNext, View: "stops"})
	snap = nextSnapshot(t, s, func(dashboard.Snapshot) bool { return true })
	tbl, _ = snap.Table("stops")
	assert.Equal(t, 2, tbl.Page.Index)
	assert.Len(t, tbl.Rows, 2)

	rec.mu.Lock()
	assert.Equal(t, []string{"stops:next"}, rec.actions)
	rec.mu.Unlock()
}

func TestSessionErrorsAndPing(t *testing.T) {
	s := startSession(t, &dashboardtest.Source{}, Config{})
	require.Equal(t, TypeHello, next(t, s).Type)

	deliver(t, s, TypeOpen, ViewPayload{View: "nope"})
	msg := next(t, s)
	require.Equal(t, TypeError, msg.Type)
	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &ep))
	assert.Equal(t, "nope", ep.View)
	assert.Contains(t, ep.Message, "unknown view")

	deliver(t, s, TypePing, nil)
	assert.Equal(t, TypePong, next(t, s).Type)

	deliver(t, s, "subscribe", nil)
	assert.Equal(t, TypeError, next(t, s).Type)
}

func TestSessionActionRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := middleware.NewRateLimiter(ctx, 1, time.Minute, quietLogger())

	s := startSession(t, &dashboardtest.Source{}, Config{Limiter: limiter})
	require.Equal(t, TypeHello, next(t, s).Type)

	deliver(t, s, TypeOpen, ViewPayload{View: "route_stats"})
	require.Equal(t, TypeSnapshot, next(t, s).Type)

	deliver(t, s, TypeAction, dashboard.Action{Type: dashboard.ActionInput, View: "route_stats", Params: map[string]string{"date": "20240115"}})
	require.Equal(t, TypeSnapshot, next(t, s).Type)

	deliver(t, s, TypeAction, dashboard.Action{Type: dashboard.ActionSubmit, View: "route_stats"})
	msg := next(t, s)
	require.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "rate limit exceeded")
}

func TestSessionCloseReleasesClock(t *testing.T) {
	rec := &recorder{}
	s := startSession(t, &dashboardtest.Source{}, Config{
		Recorder:  rec,
		Dashboard: []dashboard.Option{dashboard.WithClockInterval(5 * time.Millisecond)},
	})
	require.Equal(t, TypeHello, next(t, s).Type)

	deliver(t, s, TypeOpen, ViewPayload{View: "overview"})
	first := nextSnapshot(t, s, func(dashboard.Snapshot) bool { return true })
	later := nextSnapshot(t, s, func(sn dashboard.Snapshot) bool { return sn.Time.After(*first.Time) })
	assert.Equal(t, "overview", later.View)

	s.Close()
	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.closed == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, s.Deliver(Inbound{Type: TypePing}))
}

func TestHubBroadcastAndShutdown(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	s := New(context.Background(), &dashboardtest.Source{}, Config{Logger: quietLogger()})
	hub.Register(s)
	require.Eventually(t, func() bool { return hub.SessionCount() == 1 }, time.Second, time.Millisecond)

	hub.Broadcast("server shutting down")
	msg := next(t, s)
	require.Equal(t, TypeNotice, msg.Type)
	assert.Contains(t, string(msg.Payload), "server shutting down")

	cancel()
	<-hubDone
	assert.Zero(t, hub.SessionCount())
	select {
	case <-s.Done():
	default:
		t.Fatal("session not closed by hub shutdown")
	}
}

func TestHubStoppedNeverBlocks(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	sessions := make([]*Session, 20)
	for i := range sessions {
		sessions[i] = New(context.Background(), &dashboardtest.Source{}, Config{Logger: quietLogger()})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, s := range sessions {
			hub.Register(s)
			hub.Unregister(s)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after the hub stopped")
	}
	assert.Zero(t, hub.SessionCount())
	for _, s := range sessions {
		select {
		case <-s.Done():
		default:
			t.Fatalf("session %s registered after shutdown was left open", s.ID)
		}
	}
}
