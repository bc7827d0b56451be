package dashboard

import (
	"time"

	"transitdash/internal/clock"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

// overview shows the wall clock, the data source and the view catalog.
type overview struct {
	baseURL string
	scope   *clock.Scope
	now     time.Time
	views   *view.Paged[Entry]
}

func newOverview(e env) View {
	return &overview{
		baseURL: e.baseURL,
		scope:   clock.NewScope(e.clockInterval),
		views:   view.NewPaged[Entry](e.pageSize),
	}
}

func (v *overview) Name() string  { return "overview" }
func (v *overview) Title() string { return "Overview" }

func (v *overview) Open(r Runner) {
	v.now = time.Now()
	v.views.Reset(Catalog())
	v.scope.Acquire(func(t time.Time) {
		r.Post(v.Name(), func() bool {
			v.now = t
			return true
		})
	})
}

func (v *overview) Close() {
	v.scope.Release()
	v.views.Clear()
}

func (v *overview) Apply(a Action, _ Runner) error {
	switch a.Type {
	case ActionNext, ActionPrev:
		return page(v.Name(), []listRef{{"views", v.views}}, a)
	default:
		return unsupported(v.Name(), a)
	}
}

func (v *overview) Snapshot() Snapshot {
	now := v.now
	s := Snapshot{
		View:   v.Name(),
		Title:  v.Title(),
		Status: view.StatusReady,
		Time:   &now,
		Facts: []present.Fact{
			{Label: "Time", Value: now.Format("15:04:05")},
			{Label: "Date", Value: now.Format("2006-01-02")},
			{Label: "Data Source", Value: v.baseURL},
		},
		Tables: []present.Table{
			table("views", "Views", []string{"Name", "Title"},
				present.Rows(v.views.Page(), func(e Entry) present.Row {
					return present.Row{Cells: []string{e.Name, e.Title}}
				}), v.views.State()),
		},
	}
	if v.now.IsZero() {
		s.Status = view.StatusIdle
		s.Time = nil
	}
	return s
}
