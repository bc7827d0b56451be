package session

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks live sessions so they can be counted, notified and torn down
// together on shutdown. Once Run returns the hub is stopped: Register closes
// late sessions right away and Unregister never blocks.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	stopped  bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		logger:   logger.With("component", "hub"),
	}
}

// Run blocks until ctx is done, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAllSessions()
}

func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		h.logger.Debug("hub stopped, closing late session", "session_id", s.ID)
		s.Close()
		return
	}
	h.sessions[s] = struct{}{}
	total := len(h.sessions)
	h.mu.Unlock()
	h.logger.Debug("session registered", "session_id", s.ID, "total", total)
}

func (h *Hub) Unregister(s *Session) {
	h.removeSession(s)
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast queues a notice on every session. Sessions whose send buffer is
// full miss it.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions {
		if !s.Notify(message) {
			h.logger.Debug("session send buffer full", "session_id", s.ID)
		}
	}
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	h.logger.Debug("session unregistered", "session_id", s.ID, "total", len(h.sessions))
}

func (h *Hub) closeAllSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for s := range h.sessions {
		s.Close()
	}
	h.sessions = make(map[*Session]struct{})
}
