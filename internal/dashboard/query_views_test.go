package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitdash/internal/dashboard/dashboardtest"
	"transitdash/internal/domain"
	"transitdash/internal/view"
)

func statsRows(n int) []domain.RouteStats {
	out := make([]domain.RouteStats, n)
	for i := range out {
		out[i] = domain.RouteStats{
			RouteID:       domain.Text(string(rune('A' + i))),
			RouteLongName: domain.Text("Route " + string(rune('A'+i))),
			NumTrips:      domain.Num(float64(10 + i)),
			MaxHeadway:    domain.Num(float64(i)),
		}
	}
	return out
}

func TestDateQueryValidatesBeforeFetch(t *testing.T) {
	src := &dashboardtest.Source{}
	d := newSync(t, src)
	require.NoError(t, d.Open("route_stats"))

	require.NoError(t, d.Apply(Action{Type: ActionInput, View: "route_stats", Params: map[string]string{"date": "   "}}))
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "route_stats"}))

	snap, _ := d.Snapshot("route_stats")
	assert.Equal(t, view.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "validation failed")
	assert.Contains(t, snap.Error, "date is required")
	assert.Zero(t, src.CallCount("RouteStats"))
}

func TestRouteStatsQuery(t *testing.T) {
	src := &dashboardtest.Source{Stats: statsRows(12)}
	snap, err := Render(context.Background(), src, "route_stats", Request{
		Params: map[string]string{"date": "20240115"},
		Page:   2,
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []string{"20240115"}, src.Dates)
	assert.Equal(t, "20240115", snap.Inputs["date"])
	assert.Equal(t, view.StatusReady, snap.Status)
	tbl, _ := snap.Table("routes")
	assert.Equal(t, 2, tbl.Page.Index)
	assert.Len(t, tbl.Rows, 2)
	require.Len(t, snap.Charts, 1)
	assert.Len(t, snap.Charts[0].Points, 2)
}

func TestFrequentRoutesSubListsPageIndependently(t *testing.T) {
	most := statsRows(15)
	least := statsRows(3)
	least[1].MaxHeadway = domain.Number{}
	src := &dashboardtest.Source{Frequent: domain.FrequentRoutes{Most: most, Least: least}}
	d := newSync(t, src)
	require.NoError(t, d.Open("frequent_routes"))

	require.NoError(t, d.Apply(Action{Type: ActionInput, View: "frequent_routes", Params: map[string]string{"date": "20240115"}}))
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "frequent_routes"}))
	require.NoError(t, d.Apply(Action{Type: ActionNext, View: "frequent_routes", List: "most"}))

	snap, _ := d.Snapshot("frequent_routes")
	mostTbl, _ := snap.Table("most")
	leastTbl, _ := snap.Table("least")
	assert.Equal(t, 2, mostTbl.Page.Index)
	assert.Len(t, mostTbl.Rows, 5)
	assert.Equal(t, 1, leastTbl.Page.Index)
	assert.Equal(t, "NA", leastTbl.Rows[1].Cells[3])

	require.Len(t, snap.Charts, 4)
	assert.Equal(t, "Max Headway - Least Frequent", snap.Charts[1].Name)
	assert.Len(t, snap.Charts[1].Points, 2)

	// A new submit resets both sub-lists to page 1.
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "frequent_routes"}))
	snap, _ = d.Snapshot("frequent_routes")
	mostTbl, _ = snap.Table("most")
	assert.Equal(t, 1, mostTbl.Page.Index)
}

func TestQueryFailureLeavesNoResult(t *testing.T) {
	src := &dashboardtest.Source{Err: errors.New("unexpected status code: 500")}
	snap, err := Render(context.Background(), src, "peak_hour", Request{Params: map[string]string{"date": "20240115"}}, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, view.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "fetch failed")
	assert.Empty(t, snap.Charts)
}

func TestPeakHourView(t *testing.T) {
	src := &dashboardtest.Source{Peaks: []domain.PeakHourRoute{
		{RouteStats: domain.RouteStats{RouteID: "M15", RouteLongName: "1st Ave"}, TripCount: domain.Num(42), TimePeriods: []string{"morning", "evening"}},
		{RouteStats: domain.RouteStats{RouteID: "B6"}},
	}}
	snap, err := Render(context.Background(), src, "peak_hour", Request{Params: map[string]string{"date": "20240115"}}, WithLogger(quietLogger()))
	require.NoError(t, err)

	tbl, _ := snap.Table("routes")
	assert.Equal(t, []string{"M15", "1st Ave", "#FFFFFF", "42", "morning, evening"}, tbl.Rows[0].Cells)
	assert.Equal(t, []string{"B6", "NA", "#FFFFFF", "NA", "NA"}, tbl.Rows[1].Cells)
	require.Len(t, snap.Charts, 1)
	require.Len(t, snap.Charts[0].Points, 1)
	assert.Equal(t, "1st Ave", snap.Charts[0].Points[0].Label)
}

func TestQueryLastRequestWins(t *testing.T) {
	src := &dashboardtest.Source{Speeds: domain.RouteSpeeds{Fastest: statsRows(2)}}
	runner := &queueRunner{}
	d := New(src, runner, WithLogger(quietLogger()))
	require.NoError(t, d.Open("fastest_slowest"))

	for _, date := range []string{"20240101", "20240102"} {
		require.NoError(t, d.Apply(Action{Type: ActionInput, View: "fastest_slowest", Params: map[string]string{"date": date}}))
		require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "fastest_slowest"}))
	}
	require.Len(t, runner.tasks, 2)
	assert.True(t, runner.complete(1))
	assert.False(t, runner.complete(0))

	snap, _ := d.Snapshot("fastest_slowest")
	assert.Equal(t, view.StatusReady, snap.Status)
	assert.Equal(t, "20240102", snap.Inputs["date"])
}

func TestTripPlannerNormalizesAndPagesByTotal(t *testing.T) {
	stops := []domain.Stop{
		{ID: "101", Name: "Main St", Lat: domain.Num(40), Lon: domain.Num(-74)},
		{ID: "202", Name: "Elm  Ave", Lat: domain.Num(41), Lon: domain.Num(-73)},
	}
	src := &dashboardtest.Source{
		StopsData: stops,
		Plan: domain.TripPlan{
			TotalResults: 25,
			Trips: []domain.PlannedTrip{
				{TripID: "T1", Duration: domain.Num(0.75), Distance: domain.Num(3.1)},
				{TripID: "T2"},
			},
		},
	}
	d := newSync(t, src)
	require.NoError(t, d.Open("trip_planner"))

	require.NoError(t, d.Apply(Action{Type: ActionInput, View: "trip_planner", Params: map[string]string{
		"start_stop_name": "Main St ",
		"end_stop_name":   " Elm\t Ave",
	}}))
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "trip_planner"}))
	require.Equal(t, [][2]string{{"Main St", "Elm Ave"}}, src.Pairs)

	snap, _ := d.Snapshot("trip_planner")
	trips, _ := snap.Table("trips")
	assert.Equal(t, 3, trips.Page.TotalPages)
	assert.True(t, trips.Page.HasNext)
	require.Len(t, trips.Rows, 2)
	assert.Equal(t, "45 minutes", trips.Rows[0].Cells[6])
	assert.Equal(t, "3.10 km", trips.Rows[0].Cells[7])

	require.Len(t, snap.Charts, 1)
	assert.Equal(t, 45.0, snap.Charts[0].Points[0].Value)
	assert.Len(t, snap.Charts[0].Points, 1)

	require.NotNil(t, snap.Map)
	assert.Equal(t, 40.5, snap.Map.Center.Lat)
	assert.Equal(t, -73.5, snap.Map.Center.Lon)

	require.NoError(t, d.Apply(Action{Type: ActionNext, View: "trip_planner"}))
	snap, _ = d.Snapshot("trip_planner")
	trips, _ = snap.Table("trips")
	assert.Equal(t, 2, trips.Page.Index)
	assert.Empty(t, trips.Rows)
}

func TestTripPlannerRequiresBothStops(t *testing.T) {
	src := &dashboardtest.Source{}
	snap, err := Render(context.Background(), src, "trip_planner", Request{
		Params: map[string]string{"start_stop_name": "Main St", "end_stop_name": "   "},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, view.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "end_stop_name is required")
	assert.Zero(t, src.CallCount("TripsBetweenStops"))
}

func TestTripPlannerPickStops(t *testing.T) {
	src := &dashboardtest.Source{StopsData: dashboardtest.Stops(3)}
	d := newSync(t, src)
	require.NoError(t, d.Open("trip_planner"))

	require.NoError(t, d.Apply(Action{Type: ActionSelect, View: "trip_planner", List: "start", Key: "S1"}))
	require.NoError(t, d.Apply(Action{Type: ActionSelect, View: "trip_planner", List: "end", Key: "S3"}))
	assert.ErrorIs(t, d.Apply(Action{Type: ActionSelect, View: "trip_planner", Key: "S2"}), ErrUnsupportedAction)

	err := d.Apply(Action{Type: ActionSelect, View: "trip_planner", List: "start", Key: "S99"})
	assert.ErrorIs(t, err, ErrUnsupportedAction)
	assert.ErrorContains(t, err, `"S99"`)

	snap, _ := d.Snapshot("trip_planner")
	assert.Equal(t, "Stop 1", snap.Inputs["start_stop_name"])
	assert.Equal(t, "Stop 3", snap.Inputs["end_stop_name"])
	assert.Nil(t, snap.Map)
}

func TestNormalizeStopName(t *testing.T) {
	assert.Equal(t, "Main St", NormalizeStopName("  Main \t\n St "))
	assert.Equal(t, "Café", NormalizeStopName("Café"))
	assert.Equal(t, "", NormalizeStopName(" \t "))
}

func TestTrainModelView(t *testing.T) {
	src := &dashboardtest.Source{Report: domain.TrainingReport{
		Message: "Model trained successfully!",
		MSE:     domain.Num(1.5),
		MAE:     domain.Num(0.123456),
		FeatureImportance: []domain.FeatureImportance{
			{Feature: "route_id", Importance: domain.Num(0.6)},
			{Feature: "month", Importance: domain.Num(0.2)},
			{Feature: "hour", Importance: domain.Number{}},
		},
	}}
	snap, err := Render(context.Background(), src, "train_model", Request{Params: map[string]string{"run": "1"}}, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.Len(t, snap.Facts, 3)
	assert.Equal(t, "1.5000", snap.Facts[1].Value)
	assert.Equal(t, "0.1235", snap.Facts[2].Value)

	tbl, _ := snap.Table("features")
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"route_id", "0.6000", "75.00"}, tbl.Rows[0].Cells)
	assert.Equal(t, []string{"hour", "NA", "NA"}, tbl.Rows[2].Cells)
	require.Len(t, snap.Charts, 1)
	assert.Len(t, snap.Charts[0].Points, 2)
}

func TestDemandView(t *testing.T) {
	src := &dashboardtest.Source{Prediction: domain.DemandPrediction{PredictedDemand: domain.Num(41.6)}}
	d := newSync(t, src)
	require.NoError(t, d.Open("demand"))

	params := map[string]string{
		"route_id": "M15", "date": "2024-01-15", "time": "08:00",
		"total_stops": "abc", "avg_speed": "12.5", "avg_duration": "0.5", "avg_distance": "",
	}
	require.NoError(t, d.Apply(Action{Type: ActionInput, View: "demand", Params: params}))
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "demand"}))

	snap, _ := d.Snapshot("demand")
	assert.Equal(t, view.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "total_stops must be a number")
	assert.Contains(t, snap.Error, "avg_distance is required")
	assert.Zero(t, src.CallCount("PredictDemand"))

	require.NoError(t, d.Apply(Action{Type: ActionInput, View: "demand", Params: map[string]string{"total_stops": "21", "avg_distance": "4.2"}}))
	require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "demand"}))

	snap, _ = d.Snapshot("demand")
	assert.Equal(t, view.StatusReady, snap.Status)
	assert.Equal(t, domain.DemandInput{
		RouteID: "M15", Date: "2024-01-15", Time: "08:00",
		TotalStops: 21, AvgSpeed: 12.5, AvgDuration: 0.5, AvgDistance: 4.2,
	}, src.Demand)
	require.Len(t, snap.Facts, 1)
	assert.Equal(t, "42", snap.Facts[0].Value)
}

func TestDemandViewRejectsOutOfRangeNumbers(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{name: "total stops overflow", field: "total_stops", value: "99999999999999999999"},
		{name: "speed overflow", field: "avg_speed", value: "1" + strings.Repeat("0", 400)},
		{name: "distance overflow", field: "avg_distance", value: "-9" + strings.Repeat("9", 400) + ".5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &dashboardtest.Source{}
			runner := &queueRunner{}
			d := New(src, runner, WithLogger(quietLogger()))
			require.NoError(t, d.Open("demand"))

			params := map[string]string{
				"route_id": "M15", "date": "2024-01-15", "time": "08:00",
				"total_stops": "21", "avg_speed": "12.5", "avg_duration": "0.5", "avg_distance": "4.2",
			}
			params[tt.field] = tt.value
			require.NoError(t, d.Apply(Action{Type: ActionInput, View: "demand", Params: params}))
			require.NoError(t, d.Apply(Action{Type: ActionSubmit, View: "demand"}))

			assert.Empty(t, runner.tasks)
			snap, _ := d.Snapshot("demand")
			assert.Equal(t, view.StatusError, snap.Status)
			assert.True(t, strings.HasPrefix(snap.Error, view.ErrValidationFailed.Error()), snap.Error)
			assert.Contains(t, snap.Error, "parsing "+tt.field)
			assert.Zero(t, src.CallCount("PredictDemand"))
		})
	}
}

func TestOverviewClockStopsOnClose(t *testing.T) {
	runner := &queueRunner{}
	d := New(&dashboardtest.Source{}, runner, WithLogger(quietLogger()), WithClockInterval(5*time.Millisecond), WithBaseURL("http://transit.local"))
	require.NoError(t, d.Open("overview"))

	snap, _ := d.Snapshot("overview")
	require.NotNil(t, snap.Time)
	assert.Equal(t, "http://transit.local", snap.Facts[2].Value)
	tbl, _ := snap.Table("views")
	assert.Equal(t, len(Catalog()), tbl.Page.TotalItems)

	assert.Eventually(t, func() bool { return runner.postCount() >= 2 }, time.Second, time.Millisecond)

	require.NoError(t, d.Close("overview"))
	after := runner.postCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runner.postCount())
}

func TestRenderOverviewDoesNotTick(t *testing.T) {
	snap, err := Render(context.Background(), &dashboardtest.Source{}, "overview", Request{}, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, view.StatusReady, snap.Status)
	require.NotNil(t, snap.Time)
	assert.WithinDuration(t, time.Now(), *snap.Time, time.Minute)
}

func TestBindParamsIgnoresUnknownKeys(t *testing.T) {
	q, err := bindParams(StopPair{Start: "A"}, map[string]string{"end_stop_name": "B", "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, StopPair{Start: "A", End: "B"}, q)
}
