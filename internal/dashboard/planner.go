package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"transitdash/internal/domain"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

// tripPlanner searches trips between two stops picked by name. The stop
// list doubles as a picker and as the coordinate source of the map.
type tripPlanner struct {
	stops *view.ListController[domain.Stop]
	query *view.QueryController[StopPair, domain.TripPlan]
	trips *view.Paged[domain.PlannedTrip]
}

func newTripPlanner(e env) View {
	p := &tripPlanner{
		stops: view.NewList("trip_planner_stops", e.src.Stops, func(s domain.Stop) []string {
			return []string{string(s.Name)}
		}, e.viewOptions()...),
		trips: view.NewPaged[domain.PlannedTrip](e.pageSize),
	}
	p.query = view.NewQuery("trip_planner",
		func(ctx context.Context, q StopPair) (domain.TripPlan, error) {
			return e.src.TripsBetweenStops(ctx, q.Start, q.End)
		},
		view.QueryHooks[StopPair, domain.TripPlan]{
			Normalize: normalizeStopPair,
			OnChange: func(plan domain.TripPlan) {
				p.trips.ResetCounted(plan.Trips, plan.TotalResults)
			},
		},
		e.viewOptions()...,
	)
	return p
}

func (p *tripPlanner) Name() string  { return "trip_planner" }
func (p *tripPlanner) Title() string { return "Trip Planner" }

func (p *tripPlanner) Open(r Runner) {
	r.Run(p.Name(), p.stops.Activate())
}

func (p *tripPlanner) Close() {
	p.stops.Close()
	p.query.Close()
}

func (p *tripPlanner) Apply(a Action, r Runner) error {
	switch a.Type {
	case ActionFilter:
		p.stops.SetFilter(a.Text)
		return nil
	case ActionInput:
		q, err := bindParams(p.query.Input(), a.Params)
		if err != nil {
			return err
		}
		p.query.SetInput(q)
		return nil
	case ActionSelect:
		return p.pick(a)
	case ActionSubmit:
		if t := p.query.Submit(); t != nil {
			r.Run(p.Name(), t)
		}
		return nil
	case ActionNext, ActionPrev:
		return page(p.Name(), []listRef{
			{"trips", p.trips},
			{"stops", listControl[domain.Stop]{p.stops}},
		}, a)
	default:
		return unsupported(p.Name(), a)
	}
}

// pick copies the name of the stop with id a.Key into the start or end
// input, chosen by a.List.
func (p *tripPlanner) pick(a Action) error {
	if a.List != "start" && a.List != "end" {
		return unsupported(p.Name(), a)
	}
	for _, s := range p.stops.Items() {
		if string(s.ID) != a.Key {
			continue
		}
		q := p.query.Input()
		if a.List == "start" {
			q.Start = string(s.Name)
		} else {
			q.End = string(s.Name)
		}
		p.query.SetInput(q)
		return nil
	}
	return fmt.Errorf("%w: stop %q is not in the loaded stops list", ErrUnsupportedAction, a.Key)
}

func (p *tripPlanner) Snapshot() Snapshot {
	inputs, _ := inputsOf(p.query.Input())
	s := Snapshot{
		View:   p.Name(),
		Title:  p.Title(),
		Status: p.query.Status(),
		Error:  errString(p.query.Err()),
		Filter: p.stops.Filter(),
		Inputs: inputs,
		Tables: []present.Table{
			table("trips", "Trips Between Stops", []string{"Trip ID", "Route", "Color", "Start", "End", "Stops", "Duration", "Distance"},
				present.Rows(p.trips.Page(), plannedTripRow), p.trips.State()),
			table("stops", "Stops", []string{"Stop ID", "Name"},
				present.Rows(p.stops.Page(), func(s domain.Stop) present.Row {
					return present.Row{Cells: []string{present.Cell(s.ID), present.Cell(s.Name)}}
				}), p.stops.PageState()),
		},
	}
	if s.Status == view.StatusIdle {
		s.Status = p.stops.Status()
		s.Error = errString(p.stops.Err())
	}

	plan, ok := p.query.Result()
	if !ok {
		return s
	}
	s.Facts = []present.Fact{{Label: "Total Results", Value: strconv.Itoa(p.trips.State().TotalItems)}}
	if plan.Message != "" {
		s.Facts = append(s.Facts, present.Fact{Label: "Message", Value: plan.Message})
	}
	s.Charts = []present.Series{
		present.SeriesOf("Duration (minutes)", plan.Trips,
			func(t domain.PlannedTrip) string { return present.Cell(t.TripID) },
			func(t domain.PlannedTrip) domain.Number { return minutes(t.Duration) }),
	}
	if line, ok := p.segment(p.query.Submitted()); ok {
		s.Map = &line
	}
	return s
}

// segment draws the line between the submitted stops, located by name in
// the stop list.
func (p *tripPlanner) segment(q StopPair) (present.Line, bool) {
	from, ok := p.stopNamed(q.Start)
	if !ok {
		return present.Line{}, false
	}
	to, ok := p.stopNamed(q.End)
	if !ok {
		return present.Line{}, false
	}
	return present.Segment(q.Start, from.Lat, from.Lon, q.End, to.Lat, to.Lon)
}

func (p *tripPlanner) stopNamed(name string) (domain.Stop, bool) {
	for _, s := range p.stops.Items() {
		if strings.EqualFold(NormalizeStopName(string(s.Name)), name) {
			return s, true
		}
	}
	return domain.Stop{}, false
}

func plannedTripRow(t domain.PlannedTrip) present.Row {
	color := present.Color(string(t.RouteColor))
	route := present.Cell(t.RouteShortName) + " - " + present.Cell(t.RouteLongName)
	return present.Row{
		Cells: []string{
			present.Cell(t.TripID), route, color,
			present.Cell(t.StartTime), present.Cell(t.EndTime),
			present.Integer(t.NumStops),
			present.Minutes(t.Duration),
			present.Kilometers(t.Distance),
		},
		Color: color,
	}
}

func minutes(hours domain.Number) domain.Number {
	if !hours.Valid {
		return hours
	}
	return domain.Num(math.Round(hours.Value * 60))
}
