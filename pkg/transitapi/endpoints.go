package transitapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-resty/resty/v2"

	"transitdash/internal/domain"
)

func (c *Client) Routes(ctx context.Context) ([]domain.Route, error) {
	var out []domain.Route
	if err := c.get(ctx, "routes", "/routes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Route(ctx context.Context, id string) ([]domain.Route, error) {
	return lookup[domain.Route](ctx, c, "route", "/route/{id}", id)
}

func (c *Client) Stops(ctx context.Context) ([]domain.Stop, error) {
	var out []domain.Stop
	if err := c.get(ctx, "stops", "/stops", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stop(ctx context.Context, id string) ([]domain.Stop, error) {
	return lookup[domain.Stop](ctx, c, "stop", "/stop/{id}", id)
}

func (c *Client) Trips(ctx context.Context) ([]domain.Trip, error) {
	var out []domain.Trip
	if err := c.get(ctx, "trips", "/trips", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Trip(ctx context.Context, id string) ([]domain.Trip, error) {
	return lookup[domain.Trip](ctx, c, "trip", "/trip/{id}", id)
}

// Calendars returns the service calendar rows. The source exposes them under
// /calendar_dates.
func (c *Client) Calendars(ctx context.Context) ([]domain.Calendar, error) {
	var out []domain.Calendar
	if err := c.get(ctx, "calendar_dates", "/calendar_dates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RouteStats(ctx context.Context, date string) ([]domain.RouteStats, error) {
	var out struct {
		RouteStats []domain.RouteStats `json:"route_stats"`
	}
	if err := c.get(ctx, "route_stats", "/api/route_stats", queryDate(date), &out); err != nil {
		return nil, err
	}
	return out.RouteStats, nil
}

func (c *Client) FrequentRoutes(ctx context.Context, date string) (domain.FrequentRoutes, error) {
	var out domain.FrequentRoutes
	err := c.get(ctx, "frequent_routes", "/api/frequent_routes", queryDate(date), &out)
	return out, err
}

func (c *Client) ShortestLongestRoutes(ctx context.Context, date string) (domain.RouteDistances, error) {
	var out domain.RouteDistances
	err := c.get(ctx, "shortest_longest_routes", "/api/shortest_longest_routes", queryDate(date), &out)
	return out, err
}

func (c *Client) SlowestFastestRoutes(ctx context.Context, date string) (domain.RouteSpeeds, error) {
	var out domain.RouteSpeeds
	err := c.get(ctx, "slowest_fastest_routes", "/api/slowest_fastest_routes", queryDate(date), &out)
	return out, err
}

func (c *Client) PeakHourTraffic(ctx context.Context, date string) ([]domain.PeakHourRoute, error) {
	var out struct {
		Routes []domain.PeakHourRoute `json:"peak_hour_routes"`
	}
	if err := c.get(ctx, "peak_hour_traffic", "/api/peak_hour_traffic", queryDate(date), &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

// TripsBetweenStops searches trips serving both stops, matched by exact stop
// name. A 404 means the names are unknown or no trip serves both, and is
// returned as an empty plan carrying the source's message.
func (c *Client) TripsBetweenStops(ctx context.Context, startName, endName string) (domain.TripPlan, error) {
	var out domain.TripPlan
	err := c.get(ctx, "trips_between_stops", "/api/trips_between_stops", func(r *resty.Request) {
		r.SetQueryParam("start_stop_name", startName)
		r.SetQueryParam("end_stop_name", endName)
	}, &out)

	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return domain.TripPlan{
			StartStopName: domain.Text(startName),
			EndStopName:   domain.Text(endName),
			Trips:         []domain.PlannedTrip{},
			Message:       se.Message,
		}, nil
	}
	return out, err
}

// TrainModel asks the source to retrain its demand model and returns the
// evaluation report.
func (c *Client) TrainModel(ctx context.Context) (domain.TrainingReport, error) {
	var out domain.TrainingReport
	err := c.do(ctx, "train_model", http.MethodPost, "/train_model", nil, &out)
	return out, err
}

func (c *Client) PredictDemand(ctx context.Context, in domain.DemandInput) (domain.DemandPrediction, error) {
	var out domain.DemandPrediction
	err := c.do(ctx, "predict_demand", http.MethodPost, "/predict_demand", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(in)
	}, &out)
	return out, err
}
