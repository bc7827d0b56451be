package dashboard

import (
	"transitdash/internal/domain"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

// browseView is a filterable list of a static collection with an optional
// detail lookup by id.
type browseView[T any] struct {
	name, title string

	list    *view.ListController[T]
	detail  *view.DetailController[string, T]
	columns []string
	row     func(T) present.Row
	fields  func(T) []present.Fact
	color   func(T) string
}

func (v *browseView[T]) Name() string  { return v.name }
func (v *browseView[T]) Title() string { return v.title }

func (v *browseView[T]) Open(r Runner) {
	r.Run(v.name, v.list.Activate())
}

func (v *browseView[T]) Close() {
	v.list.Close()
	if v.detail != nil {
		v.detail.Close()
	}
}

func (v *browseView[T]) Apply(a Action, r Runner) error {
	switch a.Type {
	case ActionFilter:
		v.list.SetFilter(a.Text)
		return nil
	case ActionNext, ActionPrev:
		return page(v.name, []listRef{{v.list.Name(), listControl[T]{v.list}}}, a)
	case ActionSelect:
		if v.detail == nil {
			return unsupported(v.name, a)
		}
		r.Run(v.name, v.detail.Select(a.Key))
		return nil
	default:
		return unsupported(v.name, a)
	}
}

func (v *browseView[T]) Snapshot() Snapshot {
	s := Snapshot{
		View:   v.name,
		Title:  v.title,
		Status: v.list.Status(),
		Error:  errString(v.list.Err()),
		Filter: v.list.Filter(),
		Tables: []present.Table{
			table(v.list.Name(), v.title, v.columns, present.Rows(v.list.Page(), v.row), v.list.PageState()),
		},
	}
	if v.detail != nil {
		s.Detail = detailPanel(v.detail, v.fields, v.color)
	}
	return s
}

func detailPanel[T any](d *view.DetailController[string, T], fields func(T) []present.Fact, color func(T) string) *present.Detail {
	key, ok := d.Key()
	if !ok {
		return nil
	}
	p := &present.Detail{
		Key:    key,
		Status: d.Status(),
		Error:  errString(d.Err()),
	}
	if rec, found := d.Record(); found {
		p.Found = true
		p.Fields = fields(rec)
		if color != nil {
			p.Color = color(rec)
		}
	}
	return p
}

func newRoutesView(e env) View {
	return &browseView[domain.Route]{
		name:  "routes",
		title: "Routes",
		list: view.NewList("routes", e.src.Routes, func(r domain.Route) []string {
			return []string{string(r.ID), string(r.ShortName), string(r.LongName)}
		}, e.viewOptions()...),
		detail:  view.NewDetail("route", e.src.Route, e.viewOptions()...),
		columns: []string{"Route ID", "Short Name", "Long Name", "Type", "Color"},
		row: func(r domain.Route) present.Row {
			color := present.Color(string(r.Color))
			return present.Row{
				Cells: []string{present.Cell(r.ID), present.Cell(r.ShortName), present.Cell(r.LongName), routeType(r.Type), color},
				Color: color,
			}
		},
		fields: func(r domain.Route) []present.Fact {
			return []present.Fact{
				{Label: "Route ID", Value: present.Cell(r.ID)},
				{Label: "Agency", Value: present.Cell(r.AgencyID)},
				{Label: "Short Name", Value: present.Cell(r.ShortName)},
				{Label: "Long Name", Value: present.Cell(r.LongName)},
				{Label: "Description", Value: present.Cell(r.Desc)},
				{Label: "Type", Value: routeType(r.Type)},
				{Label: "URL", Value: present.Cell(r.URL)},
				{Label: "Color", Value: present.Color(string(r.Color))},
				{Label: "Text Color", Value: present.Color(string(r.TextColor))},
			}
		},
		color: func(r domain.Route) string { return present.Color(string(r.Color)) },
	}
}

func routeType(raw domain.Text) string {
	t, ok := domain.ParseRouteType(raw)
	if !ok {
		return present.Placeholder
	}
	return t.String()
}

func newTripsView(e env) View {
	return &browseView[domain.Trip]{
		name:  "trips",
		title: "Trips",
		list: view.NewList("trips", e.src.Trips, func(t domain.Trip) []string {
			return []string{string(t.ID), string(t.RouteID), string(t.Headsign)}
		}, e.viewOptions()...),
		detail:  view.NewDetail("trip", e.src.Trip, e.viewOptions()...),
		columns: []string{"Trip ID", "Route ID", "Service ID", "Headsign", "Direction"},
		row: func(t domain.Trip) present.Row {
			return present.Row{Cells: []string{
				present.Cell(t.ID), present.Cell(t.RouteID), present.Cell(t.ServiceID),
				present.Cell(t.Headsign), present.Cell(t.DirectionID),
			}}
		},
		fields: func(t domain.Trip) []present.Fact {
			return []present.Fact{
				{Label: "Trip ID", Value: present.Cell(t.ID)},
				{Label: "Route ID", Value: present.Cell(t.RouteID)},
				{Label: "Service ID", Value: present.Cell(t.ServiceID)},
				{Label: "Headsign", Value: present.Cell(t.Headsign)},
				{Label: "Direction", Value: present.Cell(t.DirectionID)},
				{Label: "Block ID", Value: present.Cell(t.BlockID)},
				{Label: "Shape ID", Value: present.Cell(t.ShapeID)},
			}
		},
	}
}

func newStopsView(e env) View {
	return &browseView[domain.Stop]{
		name:  "stops",
		title: "Stops",
		list: view.NewList("stops", e.src.Stops, func(s domain.Stop) []string {
			return []string{string(s.ID), string(s.Name)}
		}, e.viewOptions()...),
		detail:  view.NewDetail("stop", e.src.Stop, e.viewOptions()...),
		columns: []string{"Stop ID", "Name", "Latitude", "Longitude"},
		row: func(s domain.Stop) present.Row {
			return present.Row{Cells: []string{
				present.Cell(s.ID), present.Cell(s.Name), present.Decimal(s.Lat, 6), present.Decimal(s.Lon, 6),
			}}
		},
		fields: func(s domain.Stop) []present.Fact {
			return []present.Fact{
				{Label: "Stop ID", Value: present.Cell(s.ID)},
				{Label: "Code", Value: present.Cell(s.Code)},
				{Label: "Name", Value: present.Cell(s.Name)},
				{Label: "Description", Value: present.Cell(s.Desc)},
				{Label: "Latitude", Value: present.Decimal(s.Lat, 6)},
				{Label: "Longitude", Value: present.Decimal(s.Lon, 6)},
				{Label: "Zone", Value: present.Cell(s.ZoneID)},
				{Label: "Parent Station", Value: present.Cell(s.ParentStation)},
			}
		},
	}
}

func newCalendarView(e env) View {
	return &browseView[domain.Calendar]{
		name:  "calendar",
		title: "Calendar Dates",
		list: view.NewList("calendar", e.src.Calendars, func(c domain.Calendar) []string {
			return []string{string(c.ServiceID)}
		}, e.viewOptions()...),
		columns: []string{"Service ID", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Start", "End"},
		row: func(c domain.Calendar) present.Row {
			cells := []string{present.Cell(c.ServiceID)}
			for _, day := range c.Weekdays() {
				cells = append(cells, present.YesNo(day))
			}
			cells = append(cells, present.Date(c.StartDate), present.Date(c.EndDate))
			return present.Row{Cells: cells}
		},
	}
}
