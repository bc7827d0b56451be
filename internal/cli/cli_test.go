package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&App{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fakeTransitAPI(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stops", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"stop_id": "S1", "stop_name": "Main St", "stop_lat": 40.71, "stop_lon": -74.0},
			{"stop_id": "S2", "stop_name": "Elm Ave", "stop_lat": "40.72", "stop_lon": null}
		]`))
	})
	mux.HandleFunc("GET /api/route_stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"route_stats": [{"route_id": "R1", "route_long_name": "Crosstown", "num_trips": 12}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("TRANSITDASH_CONFIG", "")
	t.Setenv("TRANSIT_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
}

func TestViewsCommand(t *testing.T) {
	out, err := run(t, "views")
	require.NoError(t, err)
	assert.Contains(t, out, "trip_planner")
	assert.Contains(t, out, "end_stop_name, start_stop_name")
}

func TestShowStops(t *testing.T) {
	fakeTransitAPI(t)

	out, err := run(t, "show", "stops", "--filter", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "[ready]")
	assert.Contains(t, out, "Main St")
	assert.NotContains(t, out, "Elm Ave")
	assert.Contains(t, out, "page 1 of 1, 1 items")
}

func TestShowSubmitsParams(t *testing.T) {
	fakeTransitAPI(t)

	out, err := run(t, "show", "route_stats", "--param", "date=20240115")
	require.NoError(t, err)
	assert.Contains(t, out, "Crosstown")
}

func TestShowRejectsBadFlags(t *testing.T) {
	fakeTransitAPI(t)

	_, err := run(t, "show", "stops", "--param", "novalue")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = run(t, "show", "stops", "--page", "0")
	assert.ErrorContains(t, err, "invalid page")

	_, err = run(t, "show", "nope")
	assert.ErrorContains(t, err, "unknown view")
}
