package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitdash/internal/dashboard/dashboardtest"
	"transitdash/internal/domain"
)

type countingRecorder struct{ hits, misses int }

func (r *countingRecorder) CacheHit()  { r.hits++ }
func (r *countingRecorder) CacheMiss() { r.misses++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSourceCachesStaticCollections(t *testing.T) {
	upstream := &dashboardtest.Source{StopsData: dashboardtest.Stops(3)}
	rec := &countingRecorder{}
	src := NewSource(upstream, NewMemoryStore(time.Minute), time.Minute, rec, discardLogger())
	ctx := context.Background()

	first, err := src.Stops(ctx)
	require.NoError(t, err)
	second, err := src.Stops(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.CallCount("Stops"))
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
}

func TestSourcePassesThroughOtherCalls(t *testing.T) {
	upstream := &dashboardtest.Source{StopsData: dashboardtest.Stops(3)}
	src := NewSource(upstream, NewMemoryStore(time.Minute), time.Minute, nil, discardLogger())
	ctx := context.Background()

	for range 2 {
		found, err := src.Stop(ctx, "S2")
		require.NoError(t, err)
		require.Len(t, found, 1)
	}
	assert.Equal(t, 2, upstream.CallCount("Stop"))
}

func TestSourceNeverServesStaleOnFailure(t *testing.T) {
	upstream := &dashboardtest.Source{RoutesData: []domain.Route{{ID: "M15"}}}
	src := NewSource(upstream, NewMemoryStore(time.Minute), 10*time.Millisecond, nil, discardLogger())
	ctx := context.Background()

	_, err := src.Routes(ctx)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	upstream.Err = errors.New("connection refused")

	routes, err := src.Routes(ctx)
	require.Error(t, err)
	assert.Nil(t, routes)
}

func TestWarmerWarmAll(t *testing.T) {
	upstream := &dashboardtest.Source{
		RoutesData: []domain.Route{{ID: "M15"}},
		StopsData:  dashboardtest.Stops(2),
	}
	rec := &countingRecorder{}
	src := NewSource(upstream, NewMemoryStore(time.Minute), time.Minute, rec, discardLogger())

	require.NoError(t, NewWarmer(src, discardLogger()).WarmAll(context.Background()))
	for _, name := range []string{"Routes", "Stops", "Trips", "Calendars"} {
		assert.Equal(t, 1, upstream.CallCount(name), name)
	}

	_, err := src.Routes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.CallCount("Routes"))
	assert.Equal(t, 1, rec.hits)
}

func TestWarmerReportsFailures(t *testing.T) {
	upstream := &dashboardtest.Source{Err: errors.New("down")}
	src := NewSource(upstream, NewMemoryStore(time.Minute), time.Minute, nil, discardLogger())

	err := NewWarmer(src, discardLogger()).WarmAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "routes: down")
	assert.Contains(t, err.Error(), "calendars: down")
}

func TestScheduleRefreshStopsWithContext(t *testing.T) {
	upstream := &dashboardtest.Source{}
	src := NewSource(upstream, NewMemoryStore(time.Minute), time.Minute, nil, discardLogger())
	w := NewWarmer(src, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.ScheduleRefresh(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return upstream.CallCount("Routes") >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ScheduleRefresh did not return after cancel")
	}
}
