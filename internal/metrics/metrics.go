// Package metrics holds the process counters: plain atomics for the JSON stats
// endpoint and a Prometheus registry for scraping.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transitdash/pkg/transitapi"
)

type Metrics struct {
	Stats *Stats

	registry         *prometheus.Registry
	upstreamSeconds  *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	sessions         prometheus.Gauge
	actions          *prometheus.CounterVec
	staleDiscards    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	rateLimitBlocked prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Stats:    NewStats(),
		registry: prometheus.NewRegistry(),
		upstreamSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transitdash_upstream_request_seconds",
				Help:    "Latency of requests to the transit data source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_upstream_errors_total",
				Help: "Failed requests to the transit data source",
			},
			[]string{"endpoint", "kind"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transitdash_sessions",
			Help: "Open dashboard websocket sessions",
		}),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_actions_total",
				Help: "Dashboard actions applied, by view and action type",
			},
			[]string{"view", "type"},
		),
		staleDiscards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_stale_responses_total",
				Help: "Fetch results discarded because a newer request superseded them",
			},
			[]string{"view"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimitBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitdash_rate_limited_total",
			Help: "Requests and actions rejected by the rate limiter",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamSeconds,
		m.upstreamErrors,
		m.sessions,
		m.actions,
		m.staleDiscards,
		m.cacheLookups,
		m.rateLimitBlocked,
	)

	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFetch implements transitapi.Observer.
func (m *Metrics) ObserveFetch(endpoint string, elapsed time.Duration, err error) {
	m.upstreamSeconds.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.Stats.recordFetch(err)
	if err != nil {
		m.upstreamErrors.WithLabelValues(endpoint, errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	var se *transitapi.StatusError
	if errors.As(err, &se) {
		if se.Code >= 500 {
			return "5xx"
		}
		return "4xx"
	}
	return "transport"
}

func (m *Metrics) SessionOpened() {
	m.Stats.IncSessions()
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	m.Stats.DecSessions()
	m.sessions.Dec()
}

func (m *Metrics) Action(viewName, actionType string) {
	m.Stats.IncActions()
	m.actions.WithLabelValues(viewName, actionType).Inc()
}

func (m *Metrics) StaleDiscarded(viewName string) {
	m.Stats.IncStaleDiscarded()
	m.staleDiscards.WithLabelValues(viewName).Inc()
}

func (m *Metrics) CacheHit() {
	m.Stats.IncCacheHits()
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.Stats.IncCacheMisses()
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) RateLimited() {
	m.Stats.IncRateLimitBlocked()
	m.rateLimitBlocked.Inc()
}
