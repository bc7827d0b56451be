// Package clock provides the recurring "current time" tick as a resource with
// an explicit owner and lifetime.
package clock

import (
	"sync"
	"time"
)

// DefaultInterval is the tick period of the dashboard clock.
const DefaultInterval = time.Second

// Ticker calls a function on every tick until stopped.
type Ticker struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start runs fn on its own goroutine every interval until Stop is called.
func Start(interval time.Duration, fn func(time.Time)) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Ticker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(interval, fn)
	return t
}

func (t *Ticker) run(interval time.Duration, fn func(time.Time)) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			select {
			case <-t.stop:
				return
			default:
			}
			fn(now)
		}
	}
}

// Stop halts the ticker and waits for its goroutine to exit. fn is never
// called after Stop returns. Stop is idempotent.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}

// Running reports whether the ticker goroutine is still alive.
func (t *Ticker) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Scope owns at most one Ticker. Acquiring again replaces the current ticker
// so repeated activations of a view never leave a timer behind.
type Scope struct {
	mu       sync.Mutex
	interval time.Duration
	current  *Ticker
}

func NewScope(interval time.Duration) *Scope {
	return &Scope{interval: interval}
}

// Acquire stops any running ticker and starts a new one calling fn.
func (s *Scope) Acquire(fn func(time.Time)) *Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Stop()
	}
	s.current = Start(s.interval, fn)
	return s.current
}

// Release stops the ticker, if any.
func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Stop()
		s.current = nil
	}
}

// Active reports whether the scope currently holds a running ticker.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Running()
}
