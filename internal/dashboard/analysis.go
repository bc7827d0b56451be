package dashboard

import (
	"context"

	"transitdash/internal/domain"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

// section is one paginated sub-list cut from a query result.
type section[R, T any] struct {
	name, title string
	rows        func(R) []T
	paged       *view.Paged[T]
}

type chartSpec[T any] struct {
	name  string
	value func(T) domain.Number
}

// analysisView runs a per-date analysis and shows each part of the answer as
// its own paginated table, with a chart per metric.
type analysisView[R, T any] struct {
	name, title string

	query    *view.QueryController[DateQuery, R]
	sections []*section[R, T]
	columns  []string
	row      func(T) present.Row
	label    func(T) string
	charts   []chartSpec[T]
	// chartAll plots every row rather than the rows of the current page.
	chartAll bool
}

func newAnalysis[R, T any](e env, name, title string, fetch func(context.Context, string) (R, error), sections ...*section[R, T]) *analysisView[R, T] {
	v := &analysisView[R, T]{name: name, title: title, sections: sections}
	for _, s := range sections {
		s.paged = view.NewPaged[T](e.pageSize)
	}
	v.query = view.NewQuery(name,
		func(ctx context.Context, q DateQuery) (R, error) { return fetch(ctx, q.Date) },
		view.QueryHooks[DateQuery, R]{
			Normalize: normalizeDate,
			OnChange: func(r R) {
				for _, s := range v.sections {
					s.paged.Reset(s.rows(r))
				}
			},
		},
		e.viewOptions()...,
	)
	return v
}

func (v *analysisView[R, T]) Name() string  { return v.name }
func (v *analysisView[R, T]) Title() string { return v.title }

func (v *analysisView[R, T]) Open(Runner) {}

func (v *analysisView[R, T]) Close() { v.query.Close() }

func (v *analysisView[R, T]) Apply(a Action, r Runner) error {
	switch a.Type {
	case ActionInput:
		q, err := bindParams(v.query.Input(), a.Params)
		if err != nil {
			return err
		}
		v.query.SetInput(q)
		return nil
	case ActionSubmit:
		if t := v.query.Submit(); t != nil {
			r.Run(v.name, t)
		}
		return nil
	case ActionNext, ActionPrev:
		refs := make([]listRef, len(v.sections))
		for i, s := range v.sections {
			refs[i] = listRef{s.name, s.paged}
		}
		return page(v.name, refs, a)
	default:
		return unsupported(v.name, a)
	}
}

func (v *analysisView[R, T]) Snapshot() Snapshot {
	inputs, _ := inputsOf(v.query.Input())
	s := Snapshot{
		View:   v.name,
		Title:  v.title,
		Status: v.query.Status(),
		Error:  errString(v.query.Err()),
		Inputs: inputs,
	}
	for _, sec := range v.sections {
		s.Tables = append(s.Tables, table(sec.name, sec.title, v.columns, present.Rows(sec.paged.Page(), v.row), sec.paged.State()))
	}
	if _, ok := v.query.Result(); !ok {
		return s
	}
	for _, c := range v.charts {
		for _, sec := range v.sections {
			rows := sec.paged.Page()
			if v.chartAll {
				rows = sec.paged.Items()
			}
			name := c.name
			if len(v.sections) > 1 {
				name += " - " + sec.title
			}
			s.Charts = append(s.Charts, present.SeriesOf(name, rows, v.label, c.value))
		}
	}
	return s
}

func routeLabel(r domain.RouteStats) string {
	if !r.RouteLongName.Missing() {
		return string(r.RouteLongName)
	}
	return present.Cell(r.RouteID)
}

// statsRow starts a route stats row with its id, name and color cells.
func statsRow(r domain.RouteStats, cells ...string) present.Row {
	color := present.Color(string(r.RouteColor))
	head := []string{present.Cell(r.RouteID), present.Cell(r.RouteLongName), color}
	return present.Row{Cells: append(head, cells...), Color: color}
}

func identity[T any](rows []T) []T { return rows }

func newRouteStatsView(e env) View {
	v := newAnalysis(e, "route_stats", "Route Stats", e.src.RouteStats,
		&section[[]domain.RouteStats, domain.RouteStats]{name: "routes", title: "Route Stats", rows: identity[domain.RouteStats]},
	)
	v.columns = []string{"Route ID", "Name", "Color", "Trips", "Mean Headway (min)", "Distance (km)", "Duration", "Speed (km/h)"}
	v.row = func(r domain.RouteStats) present.Row {
		return statsRow(r,
			present.Integer(r.NumTrips),
			present.Decimal(r.MeanHeadway, 2),
			present.Decimal(r.ServiceDistance, 2),
			present.Minutes(r.ServiceDuration),
			present.Decimal(r.ServiceSpeed, 2),
		)
	}
	v.label = routeLabel
	v.charts = []chartSpec[domain.RouteStats]{
		{name: "Trips", value: func(r domain.RouteStats) domain.Number { return r.NumTrips }},
	}
	return v
}

func newFrequentView(e env) View {
	v := newAnalysis(e, "frequent_routes", "Frequent Routes", e.src.FrequentRoutes,
		&section[domain.FrequentRoutes, domain.RouteStats]{name: "most", title: "Most Frequent",
			rows: func(r domain.FrequentRoutes) []domain.RouteStats { return r.Most }},
		&section[domain.FrequentRoutes, domain.RouteStats]{name: "least", title: "Least Frequent",
			rows: func(r domain.FrequentRoutes) []domain.RouteStats { return r.Least }},
	)
	v.columns = []string{"Route ID", "Name", "Color", "Max Headway (min)", "Min Headway (min)"}
	v.row = func(r domain.RouteStats) present.Row {
		return statsRow(r, present.Decimal(r.MaxHeadway, 2), present.Decimal(r.MinHeadway, 2))
	}
	v.label = routeLabel
	v.charts = []chartSpec[domain.RouteStats]{
		{name: "Max Headway", value: func(r domain.RouteStats) domain.Number { return r.MaxHeadway }},
		{name: "Min Headway", value: func(r domain.RouteStats) domain.Number { return r.MinHeadway }},
	}
	return v
}

func newSpeedsView(e env) View {
	v := newAnalysis(e, "fastest_slowest", "Fastest and Slowest Routes", e.src.SlowestFastestRoutes,
		&section[domain.RouteSpeeds, domain.RouteStats]{name: "fastest", title: "Fastest",
			rows: func(r domain.RouteSpeeds) []domain.RouteStats { return r.Fastest }},
		&section[domain.RouteSpeeds, domain.RouteStats]{name: "slowest", title: "Slowest",
			rows: func(r domain.RouteSpeeds) []domain.RouteStats { return r.Slowest }},
	)
	v.columns = []string{"Route ID", "Name", "Color", "Speed (km/h)"}
	v.row = func(r domain.RouteStats) present.Row {
		return statsRow(r, present.Decimal(r.ServiceSpeed, 2))
	}
	v.label = routeLabel
	v.charts = []chartSpec[domain.RouteStats]{
		{name: "Speed", value: func(r domain.RouteStats) domain.Number { return r.ServiceSpeed }},
	}
	return v
}

func newDistancesView(e env) View {
	v := newAnalysis(e, "shortest_longest", "Shortest and Longest Routes", e.src.ShortestLongestRoutes,
		&section[domain.RouteDistances, domain.RouteStats]{name: "shortest", title: "Shortest",
			rows: func(r domain.RouteDistances) []domain.RouteStats { return r.Shortest }},
		&section[domain.RouteDistances, domain.RouteStats]{name: "longest", title: "Longest",
			rows: func(r domain.RouteDistances) []domain.RouteStats { return r.Longest }},
	)
	v.columns = []string{"Route ID", "Name", "Color", "Mean Trip Distance", "Mean Trip Duration"}
	v.row = func(r domain.RouteStats) present.Row {
		return statsRow(r, present.Kilometers(r.MeanTripDistance), present.Minutes(r.MeanTripDuration))
	}
	v.label = routeLabel
	v.charts = []chartSpec[domain.RouteStats]{
		{name: "Mean Trip Distance", value: func(r domain.RouteStats) domain.Number { return r.MeanTripDistance }},
	}
	return v
}

func newPeakHourView(e env) View {
	v := newAnalysis(e, "peak_hour", "Peak Hour Traffic", e.src.PeakHourTraffic,
		&section[[]domain.PeakHourRoute, domain.PeakHourRoute]{name: "routes", title: "Peak Hour Routes", rows: identity[domain.PeakHourRoute]},
	)
	v.columns = []string{"Route ID", "Name", "Color", "Trips", "Time Periods"}
	v.row = func(r domain.PeakHourRoute) present.Row {
		return statsRow(r.RouteStats, present.Integer(r.TripCount), present.Join(r.TimePeriods))
	}
	v.label = func(r domain.PeakHourRoute) string { return routeLabel(r.RouteStats) }
	v.charts = []chartSpec[domain.PeakHourRoute]{
		{name: "Trips", value: func(r domain.PeakHourRoute) domain.Number { return r.TripCount }},
	}
	v.chartAll = true
	return v
}
