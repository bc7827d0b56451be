package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"transitdash/internal/dashboard"
)

// reserved query parameters of the render endpoint; anything else is input.
var reserved = map[string]bool{"filter": true, "page": true, "list": true, "select": true}

type ViewsHandler struct {
	source  dashboard.Source
	options []dashboard.Option
	timeout time.Duration
	logger  *slog.Logger
}

func NewViewsHandler(src dashboard.Source, timeout time.Duration, logger *slog.Logger, opts ...dashboard.Option) *ViewsHandler {
	return &ViewsHandler{
		source:  src,
		options: opts,
		timeout: timeout,
		logger:  logger.With("component", "views_handler"),
	}
}

type CatalogResponse struct {
	Views      []dashboard.Entry `json:"views"`
	Count      int               `json:"count"`
	ServerTime time.Time         `json:"serverTime"`
}

func (h *ViewsHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	views := dashboard.Catalog()
	respondJSON(w, http.StatusOK, CatalogResponse{
		Views:      views,
		Count:      len(views),
		ServerTime: time.Now(),
	})
}

// RenderView renders one view without keeping any state between requests.
func (h *ViewsHandler) RenderView(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing view name")
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := dashboard.Render(ctx, h.source, name, req, h.options...)
	switch {
	case errors.Is(err, dashboard.ErrUnknownView):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, dashboard.ErrUnsupportedAction):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("render failed", "view", name, "error", err)
		respondError(w, http.StatusInternalServerError, "render failed")
		return
	}

	h.logger.Debug("view rendered", "view", name, "status", snap.Status, "duration_ms", time.Since(start).Milliseconds())
	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, snap)
}

func parseRequest(r *http.Request) (dashboard.Request, error) {
	q := r.URL.Query()
	req := dashboard.Request{
		Filter: q.Get("filter"),
		List:   q.Get("list"),
		Select: q.Get("select"),
	}
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return req, errors.New("invalid page parameter: must be a positive integer")
		}
		req.Page = n
	}
	for key, values := range q {
		if reserved[key] || len(values) == 0 {
			continue
		}
		if req.Params == nil {
			req.Params = make(map[string]string)
		}
		req.Params[key] = values[0]
	}
	return req, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
