package metrics

import (
	"sync/atomic"
	"time"
)

// Stats tracks server-wide counters for the stats endpoint.
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	sessions         atomic.Int64
	wsMessagesIn     atomic.Int64
	wsMessagesOut    atomic.Int64
	actions          atomic.Int64
	fetches          atomic.Int64
	fetchFailures    atomic.Int64
	staleDiscarded   atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	rateLimitBlocked atomic.Int64
}

func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncSessions()         { s.sessions.Add(1) }
func (s *Stats) DecSessions()         { s.sessions.Add(-1) }
func (s *Stats) IncWSMessagesIn()     { s.wsMessagesIn.Add(1) }
func (s *Stats) IncWSMessagesOut()    { s.wsMessagesOut.Add(1) }
func (s *Stats) IncActions()          { s.actions.Add(1) }
func (s *Stats) IncStaleDiscarded()   { s.staleDiscarded.Add(1) }
func (s *Stats) IncCacheHits()        { s.cacheHits.Add(1) }
func (s *Stats) IncCacheMisses()      { s.cacheMisses.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

func (s *Stats) recordFetch(err error) {
	s.fetches.Add(1)
	if err != nil {
		s.fetchFailures.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	StartTime        time.Time
	Uptime           time.Duration
	Requests         int64
	Sessions         int64
	WSMessagesIn     int64
	WSMessagesOut    int64
	Actions          int64
	Fetches          int64
	FetchFailures    int64
	StaleDiscarded   int64
	CacheHits        int64
	CacheMisses      int64
	RateLimitBlocked int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		StartTime:        s.startTime,
		Uptime:           time.Since(s.startTime),
		Requests:         s.requestCount.Load(),
		Sessions:         s.sessions.Load(),
		WSMessagesIn:     s.wsMessagesIn.Load(),
		WSMessagesOut:    s.wsMessagesOut.Load(),
		Actions:          s.actions.Load(),
		Fetches:          s.fetches.Load(),
		FetchFailures:    s.fetchFailures.Load(),
		StaleDiscarded:   s.staleDiscarded.Load(),
		CacheHits:        s.cacheHits.Load(),
		CacheMisses:      s.cacheMisses.Load(),
		RateLimitBlocked: s.rateLimitBlocked.Load(),
	}
}

// CacheHitRatio is hits / (hits + misses), or 0 before any lookup.
func (s Snapshot) CacheHitRatio() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
