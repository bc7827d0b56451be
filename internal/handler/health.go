package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger checks that the data source is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	source  Pinger
	baseURL string
}

func NewHealthHandler(source Pinger, baseURL string) *HealthHandler {
	return &HealthHandler{source: source, baseURL: baseURL}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready      bool      `json:"ready"`
	Source     string    `json:"source"`
	Error      string    `json:"error,omitempty"`
	ServerTime time.Time `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := ReadyResponse{Ready: true, Source: h.baseURL, ServerTime: time.Now()}
	status := http.StatusOK
	if err := h.source.Ping(ctx); err != nil {
		resp.Ready = false
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
