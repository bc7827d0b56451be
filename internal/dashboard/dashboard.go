// Package dashboard assembles the list, detail and query controllers into
// the screens of the transit dashboard and renders them into snapshots.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"transitdash/internal/clock"
	"transitdash/internal/view"
)

// Entry describes a view in the catalog.
type Entry struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Inputs []string `json:"inputs,omitempty"`
	Lists  []string `json:"lists,omitempty"`
}

type env struct {
	src           Source
	logger        *slog.Logger
	pageSize      int
	clockInterval time.Duration
	baseURL       string
}

func (e env) viewOptions() []view.Option {
	return []view.Option{view.WithLogger(e.logger), view.WithPageSize(e.pageSize)}
}

type factory struct {
	Entry
	build func(env) View
}

var registry = []factory{
	{Entry{Name: "overview", Title: "Overview", Lists: []string{"views"}}, newOverview},
	{Entry{Name: "routes", Title: "Routes", Lists: []string{"routes"}}, newRoutesView},
	{Entry{Name: "trips", Title: "Trips", Lists: []string{"trips"}}, newTripsView},
	{Entry{Name: "stops", Title: "Stops", Lists: []string{"stops"}}, newStopsView},
	{Entry{Name: "calendar", Title: "Calendar Dates", Lists: []string{"calendar"}}, newCalendarView},
	{Entry{Name: "route_stats", Title: "Route Stats", Inputs: inputNames[DateQuery](), Lists: []string{"routes"}}, newRouteStatsView},
	{Entry{Name: "frequent_routes", Title: "Frequent Routes", Inputs: inputNames[DateQuery](), Lists: []string{"most", "least"}}, newFrequentView},
	{Entry{Name: "fastest_slowest", Title: "Fastest and Slowest Routes", Inputs: inputNames[DateQuery](), Lists: []string{"fastest", "slowest"}}, newSpeedsView},
	{Entry{Name: "shortest_longest", Title: "Shortest and Longest Routes", Inputs: inputNames[DateQuery](), Lists: []string{"shortest", "longest"}}, newDistancesView},
	{Entry{Name: "peak_hour", Title: "Peak Hour Traffic", Inputs: inputNames[DateQuery](), Lists: []string{"routes"}}, newPeakHourView},
	{Entry{Name: "trip_planner", Title: "Trip Planner", Inputs: inputNames[StopPair](), Lists: []string{"stops", "trips"}}, newTripPlanner},
	{Entry{Name: "train_model", Title: "Train Model", Lists: []string{"features"}}, newTrainView},
	{Entry{Name: "demand", Title: "Demand Prediction", Inputs: inputNames[DemandQuery]()}, newDemandView},
}

// Catalog lists every view in menu order.
func Catalog() []Entry {
	out := make([]Entry, len(registry))
	for i, f := range registry {
		out[i] = f.Entry
	}
	return out
}

func lookup(name string) (factory, bool) {
	for _, f := range registry {
		if f.Name == name {
			return f, true
		}
	}
	return factory{}, false
}

type Option func(*env)

func WithLogger(logger *slog.Logger) Option {
	return func(e *env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithPageSize(size int) Option {
	return func(e *env) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

func WithClockInterval(d time.Duration) Option {
	return func(e *env) {
		if d > 0 {
			e.clockInterval = d
		}
	}
}

// WithBaseURL sets the data source address shown on the overview.
func WithBaseURL(url string) Option {
	return func(e *env) { e.baseURL = url }
}

// Dashboard holds the open views of one session.
type Dashboard struct {
	env    env
	runner Runner
	open   map[string]View
	logger *slog.Logger
}

func New(src Source, runner Runner, opts ...Option) *Dashboard {
	e := env{
		src:           src,
		logger:        slog.Default(),
		pageSize:      view.PageSize,
		clockInterval: clock.DefaultInterval,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return &Dashboard{
		env:    e,
		runner: runner,
		open:   make(map[string]View),
		logger: e.logger.With("component", "dashboard"),
	}
}

// Open activates the named view. Opening a view that is already open tears
// it down and activates it again.
func (d *Dashboard) Open(name string) error {
	f, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	if v, ok := d.open[name]; ok {
		v.Close()
	}
	v := f.build(d.env)
	d.open[name] = v
	v.Open(d.runner)
	d.logger.Debug("view opened", "view", name)
	return nil
}

func (d *Dashboard) Close(name string) error {
	v, ok := d.open[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrViewNotOpen, name)
	}
	v.Close()
	delete(d.open, name)
	d.logger.Debug("view closed", "view", name)
	return nil
}

// CloseAll tears down every open view.
func (d *Dashboard) CloseAll() {
	for name, v := range d.open {
		v.Close()
		delete(d.open, name)
	}
}

func (d *Dashboard) Apply(a Action) error {
	v, err := d.view(a.View)
	if err != nil {
		return err
	}
	if err := v.Apply(a, d.runner); err != nil {
		return err
	}
	d.logger.Debug("action applied", "view", a.View, "type", a.Type, "list", a.List)
	return nil
}

func (d *Dashboard) Snapshot(name string) (Snapshot, error) {
	v, err := d.view(name)
	if err != nil {
		return Snapshot{}, err
	}
	return v.Snapshot(), nil
}

// OpenViews returns the names of the open views, sorted.
func (d *Dashboard) OpenViews() []string {
	names := make([]string, 0, len(d.open))
	for name := range d.open {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dashboard) view(name string) (View, error) {
	if v, ok := d.open[name]; ok {
		return v, nil
	}
	if _, ok := lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrViewNotOpen, name)
}

// Request drives a one-shot render. Params, when present, are submitted as
// the view's input before the filter, paging and selection are applied.
type Request struct {
	Filter string
	Page   int
	List   string
	Select string
	Params map[string]string
}

const maxRenderPage = 10000

// Render opens name against src, applies req synchronously and returns the
// resulting snapshot. The clock does not tick during a render.
func Render(ctx context.Context, src Source, name string, req Request, opts ...Option) (Snapshot, error) {
	d := New(src, &SyncRunner{Ctx: ctx}, opts...)
	defer d.CloseAll()

	if err := d.Open(name); err != nil {
		return Snapshot{}, err
	}

	var actions []Action
	if len(req.Params) > 0 {
		actions = append(actions,
			Action{Type: ActionInput, View: name, Params: req.Params},
			Action{Type: ActionSubmit, View: name},
		)
	}
	if req.Filter != "" {
		actions = append(actions, Action{Type: ActionFilter, View: name, List: req.List, Text: req.Filter})
	}
	for i := 1; i < req.Page && i < maxRenderPage; i++ {
		actions = append(actions, Action{Type: ActionNext, View: name, List: req.List})
	}
	if req.Select != "" {
		actions = append(actions, Action{Type: ActionSelect, View: name, List: req.List, Key: req.Select})
	}

	for _, a := range actions {
		if err := d.Apply(a); err != nil {
			return Snapshot{}, err
		}
	}
	return d.Snapshot(name)
}
