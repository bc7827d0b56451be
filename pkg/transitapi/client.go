// Package transitapi is a client for the GTFS analysis REST API the dashboard
// reads from.
package transitapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 30 * time.Second

// Observer is notified after every upstream request.
type Observer interface {
	ObserveFetch(endpoint string, elapsed time.Duration, err error)
}

// StatusError is returned for any non-2xx response. Message carries the
// source's own explanation when it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code: %d (%s)", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// IsNotFound reports whether err is a 404 from the data source.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

type Client struct {
	http     *resty.Client
	baseURL  string
	observer Observer
	logger   *slog.Logger
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.baseURL)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: baseURL,
		http: resty.NewWithClient(&http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}).SetBaseURL(baseURL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-cache")
	c.logger = c.logger.With("component", "transit_api")

	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, build func(*resty.Request), out any) error {
	start := time.Now()
	err := c.exec(ctx, method, path, build, out)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveFetch(endpoint, elapsed, err)
	}
	if err != nil {
		c.logger.Debug("upstream request failed",
			"endpoint", endpoint,
			"method", method,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return err
	}
	c.logger.Debug("upstream request",
		"endpoint", endpoint,
		"method", method,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

func (c *Client) exec(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	req := c.http.R().SetContext(ctx)
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}

	if !resp.IsSuccess() {
		se := &StatusError{Code: resp.StatusCode()}
		var body apiError
		if json.Unmarshal(resp.Body(), &body) == nil {
			se.Message = body.Error
			if se.Message == "" {
				se.Message = body.Message
			}
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, build func(*resty.Request), out any) error {
	return c.do(ctx, endpoint, http.MethodGet, path, build, out)
}

// Ping checks that the data source answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "ping", "/", nil, nil)
}

func pathID(id string) func(*resty.Request) {
	return func(r *resty.Request) { r.SetPathParam("id", id) }
}

func queryDate(date string) func(*resty.Request) {
	return func(r *resty.Request) { r.SetQueryParam("date", date) }
}

// lookup fetches a single-key detail endpoint. The source answers 404 for an
// unknown key, which is reported as an empty collection.
func lookup[T any](ctx context.Context, c *Client, endpoint, path, id string) ([]T, error) {
	var out []T
	err := c.get(ctx, endpoint, path, pathID(id), &out)
	if IsNotFound(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
