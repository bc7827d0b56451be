package dashboard

import (
	"context"

	"transitdash/internal/domain"
	"transitdash/internal/view"
)

// Source is the REST data source the views read from. *transitapi.Client
// implements it; cache.Source decorates it.
type Source interface {
	Routes(ctx context.Context) ([]domain.Route, error)
	Route(ctx context.Context, id string) ([]domain.Route, error)
	Stops(ctx context.Context) ([]domain.Stop, error)
	Stop(ctx context.Context, id string) ([]domain.Stop, error)
	Trips(ctx context.Context) ([]domain.Trip, error)
	Trip(ctx context.Context, id string) ([]domain.Trip, error)
	Calendars(ctx context.Context) ([]domain.Calendar, error)

	RouteStats(ctx context.Context, date string) ([]domain.RouteStats, error)
	FrequentRoutes(ctx context.Context, date string) (domain.FrequentRoutes, error)
	ShortestLongestRoutes(ctx context.Context, date string) (domain.RouteDistances, error)
	SlowestFastestRoutes(ctx context.Context, date string) (domain.RouteSpeeds, error)
	PeakHourTraffic(ctx context.Context, date string) ([]domain.PeakHourRoute, error)
	TripsBetweenStops(ctx context.Context, startName, endName string) (domain.TripPlan, error)

	TrainModel(ctx context.Context) (domain.TrainingReport, error)
	PredictDemand(ctx context.Context, in domain.DemandInput) (domain.DemandPrediction, error)
}

// Runner executes view tasks on behalf of the goroutine that owns a
// Dashboard.
type Runner interface {
	// Run executes t away from the owner and hands its completion back to the
	// owner goroutine, which applies it.
	Run(viewName string, t view.Task)
	// Post hands c to the owner goroutine without waiting. It may drop c when
	// the owner is busy, so it is only used for periodic updates such as
	// clock ticks.
	Post(viewName string, c view.Completion)
}

// SyncRunner runs tasks inline on the calling goroutine. It backs one-shot
// renders where nothing else touches the views. Posted completions are
// dropped: a render has no later frame to show them in.
type SyncRunner struct {
	Ctx context.Context
	// Discarded counts completions that were stale when applied.
	Discarded int
}

func (r *SyncRunner) Run(_ string, t view.Task) {
	if t == nil {
		return
	}
	ctx := r.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if !t(ctx)() {
		r.Discarded++
	}
}

func (r *SyncRunner) Post(string, view.Completion) {}
