package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"transitdash/internal/dashboard"
	"transitdash/internal/metrics"
	"transitdash/internal/session"
)

type WSHandler struct {
	hub     *session.Hub
	source  dashboard.Source
	config  session.Config
	origins []string
	stats   *metrics.Stats
	logger  *slog.Logger
}

func NewWSHandler(h *session.Hub, src dashboard.Source, cfg session.Config, origins []string, stats *metrics.Stats, logger *slog.Logger) *WSHandler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &WSHandler{
		hub:     h,
		source:  src,
		config:  cfg,
		origins: origins,
		stats:   stats,
		logger:  logger.With("component", "websocket"),
	}
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	s := session.New(context.WithoutCancel(r.Context()), h.source, h.config)
	h.hub.Register(s)

	writeDone := make(chan struct{})
	go func() {
		h.writeLoop(conn, s)
		close(writeDone)
	}()
	go s.Run()

	h.readLoop(r.Context(), conn, s)

	s.Close()
	<-writeDone
	h.hub.Unregister(s)
	conn.CloseNow()
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, s *session.Session) {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "session_id", s.ID, "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}
		h.stats.IncWSMessagesIn()

		var msg session.Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "session_id", s.ID, "error", err)
			continue
		}

		if !s.Deliver(msg) {
			return
		}
	}
}

// writeLoop drains the session's outbound queue until the session ends,
// then flushes what is left and closes the connection.
func (h *WSHandler) writeLoop(conn *websocket.Conn, s *session.Session) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.Done():
			h.flush(conn, s)
			conn.Close(websocket.StatusGoingAway, "session closed")
			return

		case msg := <-s.Send:
			if err := h.write(conn, msg); err != nil {
				h.logger.Debug("websocket write failed", "session_id", s.ID, "error", err)
				s.Close()
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				s.Close()
			}
		}
	}
}

func (h *WSHandler) flush(conn *websocket.Conn, s *session.Session) {
	for {
		select {
		case msg := <-s.Send:
			if err := h.write(conn, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, msg []byte) error {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, msg); err != nil {
		return err
	}
	h.stats.IncWSMessagesOut()
	return nil
}
