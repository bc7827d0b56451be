// Package session runs one dashboard per websocket connection. A session
// goroutine owns the dashboard: it applies inbound actions and fetch
// completions in order and queues snapshots for the writer.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"transitdash/internal/dashboard"
	"transitdash/internal/middleware"
	"transitdash/internal/view"
)

const (
	TypeOpen   = "open"
	TypeClose  = "close"
	TypeAction = "action"
	TypePing   = "ping"

	TypeHello    = "hello"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
	TypePong     = "pong"
	TypeNotice   = "notice"
)

// Inbound is a client message. Payload depends on Type: a ViewPayload for
// open and close, a dashboard.Action for action.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ViewPayload struct {
	View string `json:"view"`
}

type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type HelloPayload struct {
	SessionID string            `json:"session_id"`
	Views     []dashboard.Entry `json:"views"`
}

type ErrorPayload struct {
	View    string `json:"view,omitempty"`
	Message string `json:"message"`
}

type NoticePayload struct {
	Message string `json:"message"`
}

// Recorder receives session activity. *metrics.Metrics implements it.
type Recorder interface {
	SessionOpened()
	SessionClosed()
	Action(viewName, actionType string)
	StaleDiscarded(viewName string)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened()        {}
func (nopRecorder) SessionClosed()        {}
func (nopRecorder) Action(string, string) {}
func (nopRecorder) StaleDiscarded(string) {}

type Config struct {
	SendBuffer int
	// Limiter caps actions per session; nil means unlimited.
	Limiter   *middleware.RateLimiter
	Recorder  Recorder
	Logger    *slog.Logger
	Dashboard []dashboard.Option
}

type completion struct {
	view  string
	apply view.Completion
}

type Session struct {
	ID   string
	Send chan []byte

	ctx         context.Context
	cancel      context.CancelFunc
	inbox       chan Inbound
	completions chan completion

	dash     *dashboard.Dashboard
	limiter  *middleware.RateLimiter
	recorder Recorder
	logger   *slog.Logger
}

func New(ctx context.Context, src dashboard.Source, cfg Config) *Session {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:          uuid.New().String(),
		Send:        make(chan []byte, cfg.SendBuffer),
		ctx:         ctx,
		cancel:      cancel,
		inbox:       make(chan Inbound, 16),
		completions: make(chan completion, 16),
		limiter:     cfg.Limiter,
		recorder:    cfg.Recorder,
	}
	s.logger = cfg.Logger.With("component", "session", "session_id", s.ID)

	opts := append([]dashboard.Option{}, cfg.Dashboard...)
	opts = append(opts, dashboard.WithLogger(s.logger))
	s.dash = dashboard.New(src, runner{s}, opts...)
	return s
}

func (s *Session) Context() context.Context { return s.ctx }
func (s *Session) Done() <-chan struct{}    { return s.ctx.Done() }

// Close ends the session. Run returns and tears down every open view.
func (s *Session) Close() { s.cancel() }

// Deliver hands msg to the session goroutine. It reports false once the
// session has closed.
func (s *Session) Deliver(msg Inbound) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.inbox <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Notify queues a notice without blocking.
func (s *Session) Notify(message string) bool {
	return s.send(TypeNotice, NoticePayload{Message: message})
}

// Run is the session goroutine. It returns when the session closes.
func (s *Session) Run() {
	s.recorder.SessionOpened()
	s.logger.Info("session started")
	defer func() {
		s.dash.CloseAll()
		if s.limiter != nil {
			s.limiter.Forget(s.ID)
		}
		s.recorder.SessionClosed()
		s.logger.Info("session ended")
	}()

	s.send(TypeHello, HelloPayload{SessionID: s.ID, Views: dashboard.Catalog()})

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.inbox:
			s.handle(msg)
		case c := <-s.completions:
			s.complete(c)
		}
	}
}

func (s *Session) handle(msg Inbound) {
	switch msg.Type {
	case TypeOpen, TypeClose:
		var p ViewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError("", "invalid payload")
			return
		}
		if msg.Type == TypeOpen {
			if err := s.dash.Open(p.View); err != nil {
				s.sendError(p.View, err.Error())
				return
			}
			s.pushSnapshot(p.View)
			return
		}
		if err := s.dash.Close(p.View); err != nil {
			s.sendError(p.View, err.Error())
		}

	case TypeAction:
		var a dashboard.Action
		if err := json.Unmarshal(msg.Payload, &a); err != nil {
			s.sendError("", "invalid payload")
			return
		}
		if s.limiter != nil && !s.limiter.Allow(s.ID) {
			s.logger.Warn("action rate limit exceeded", "view", a.View, "type", a.Type)
			s.sendError(a.View, "rate limit exceeded")
			return
		}
		if err := s.dash.Apply(a); err != nil {
			s.sendError(a.View, err.Error())
			return
		}
		s.recorder.Action(a.View, string(a.Type))
		s.pushSnapshot(a.View)

	case TypePing:
		s.send(TypePong, nil)

	default:
		s.sendError("", "unknown message type: "+msg.Type)
	}
}

func (s *Session) complete(c completion) {
	if !c.apply() {
		s.recorder.StaleDiscarded(c.view)
		return
	}
	s.pushSnapshot(c.view)
}

func (s *Session) pushSnapshot(name string) {
	snap, err := s.dash.Snapshot(name)
	if err != nil {
		// The view was closed after the result was issued.
		return
	}
	s.send(TypeSnapshot, snap)
}

func (s *Session) sendError(viewName, message string) {
	s.send(TypeError, ErrorPayload{View: viewName, Message: message})
}

func (s *Session) send(typ string, payload any) bool {
	data, err := json.Marshal(Outbound{Type: typ, Payload: payload})
	if err != nil {
		s.logger.Error("encoding message failed", "type", typ, "error", err)
		return false
	}
	select {
	case s.Send <- data:
		return true
	default:
		s.logger.Debug("send buffer full, dropping message", "type", typ)
		return false
	}
}

// runner executes view tasks for the session. Results travel back through
// the completions channel so they are applied on the session goroutine.
type runner struct{ s *Session }

func (r runner) Run(viewName string, t view.Task) {
	if t == nil {
		return
	}
	s := r.s
	go func() {
		c := t(s.ctx)
		select {
		case s.completions <- completion{view: viewName, apply: c}:
		case <-s.ctx.Done():
		}
	}()
}

func (r runner) Post(viewName string, c view.Completion) {
	select {
	case r.s.completions <- completion{view: viewName, apply: c}:
	default:
	}
}
