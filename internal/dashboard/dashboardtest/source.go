// Package dashboardtest provides an in-memory dashboard.Source for tests.
package dashboardtest

import (
	"context"
	"fmt"
	"sync"

	"transitdash/internal/domain"
)

// Source serves canned data. Err, when set, is returned by every call. Calls
// counts invocations per method name.
type Source struct {
	mu sync.Mutex

	RoutesData    []domain.Route
	StopsData     []domain.Stop
	TripsData     []domain.Trip
	CalendarsData []domain.Calendar
	Stats         []domain.RouteStats
	Frequent      domain.FrequentRoutes
	Distances     domain.RouteDistances
	Speeds        domain.RouteSpeeds
	Peaks         []domain.PeakHourRoute
	Plan          domain.TripPlan
	Report        domain.TrainingReport
	Prediction    domain.DemandPrediction

	Err   error
	Calls map[string]int
	// Dates and Pairs record the arguments of date and trip planner queries.
	Dates []string
	Pairs [][2]string
	// Demand records the last prediction input.
	Demand domain.DemandInput
}

func (s *Source) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Calls == nil {
		s.Calls = make(map[string]int)
	}
	s.Calls[name]++
	return s.Err
}

// CallCount reports how many times the named method ran.
func (s *Source) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}

func (s *Source) recordDate(name, date string) error {
	err := s.record(name)
	s.mu.Lock()
	s.Dates = append(s.Dates, date)
	s.mu.Unlock()
	return err
}

func (s *Source) Ping(context.Context) error { return s.record("Ping") }

func (s *Source) Routes(context.Context) ([]domain.Route, error) {
	if err := s.record("Routes"); err != nil {
		return nil, err
	}
	return s.RoutesData, nil
}

func (s *Source) Route(_ context.Context, id string) ([]domain.Route, error) {
	if err := s.record("Route"); err != nil {
		return nil, err
	}
	return filterByID(s.RoutesData, id, func(r domain.Route) domain.Text { return r.ID }), nil
}

func (s *Source) Stops(context.Context) ([]domain.Stop, error) {
	if err := s.record("Stops"); err != nil {
		return nil, err
	}
	return s.StopsData, nil
}

func (s *Source) Stop(_ context.Context, id string) ([]domain.Stop, error) {
	if err := s.record("Stop"); err != nil {
		return nil, err
	}
	return filterByID(s.StopsData, id, func(r domain.Stop) domain.Text { return r.ID }), nil
}

func (s *Source) Trips(context.Context) ([]domain.Trip, error) {
	if err := s.record("Trips"); err != nil {
		return nil, err
	}
	return s.TripsData, nil
}

func (s *Source) Trip(_ context.Context, id string) ([]domain.Trip, error) {
	if err := s.record("Trip"); err != nil {
		return nil, err
	}
	return filterByID(s.TripsData, id, func(r domain.Trip) domain.Text { return r.ID }), nil
}

func (s *Source) Calendars(context.Context) ([]domain.Calendar, error) {
	if err := s.record("Calendars"); err != nil {
		return nil, err
	}
	return s.CalendarsData, nil
}

func (s *Source) RouteStats(_ context.Context, date string) ([]domain.RouteStats, error) {
	if err := s.recordDate("RouteStats", date); err != nil {
		return nil, err
	}
	return s.Stats, nil
}

func (s *Source) FrequentRoutes(_ context.Context, date string) (domain.FrequentRoutes, error) {
	if err := s.recordDate("FrequentRoutes", date); err != nil {
		return domain.FrequentRoutes{}, err
	}
	return s.Frequent, nil
}

func (s *Source) ShortestLongestRoutes(_ context.Context, date string) (domain.RouteDistances, error) {
	if err := s.recordDate("ShortestLongestRoutes", date); err != nil {
		return domain.RouteDistances{}, err
	}
	return s.Distances, nil
}

func (s *Source) SlowestFastestRoutes(_ context.Context, date string) (domain.RouteSpeeds, error) {
	if err := s.recordDate("SlowestFastestRoutes", date); err != nil {
		return domain.RouteSpeeds{}, err
	}
	return s.Speeds, nil
}

func (s *Source) PeakHourTraffic(_ context.Context, date string) ([]domain.PeakHourRoute, error) {
	if err := s.recordDate("PeakHourTraffic", date); err != nil {
		return nil, err
	}
	return s.Peaks, nil
}

func (s *Source) TripsBetweenStops(_ context.Context, start, end string) (domain.TripPlan, error) {
	err := s.record("TripsBetweenStops")
	s.mu.Lock()
	s.Pairs = append(s.Pairs, [2]string{start, end})
	s.mu.Unlock()
	if err != nil {
		return domain.TripPlan{}, err
	}
	return s.Plan, nil
}

func (s *Source) TrainModel(context.Context) (domain.TrainingReport, error) {
	if err := s.record("TrainModel"); err != nil {
		return domain.TrainingReport{}, err
	}
	return s.Report, nil
}

func (s *Source) PredictDemand(_ context.Context, in domain.DemandInput) (domain.DemandPrediction, error) {
	err := s.record("PredictDemand")
	s.mu.Lock()
	s.Demand = in
	s.mu.Unlock()
	if err != nil {
		return domain.DemandPrediction{}, err
	}
	return s.Prediction, nil
}

func filterByID[T any](items []T, id string, key func(T) domain.Text) []T {
	out := []T{}
	for _, it := range items {
		if string(key(it)) == id {
			out = append(out, it)
		}
	}
	return out
}

// Stops builds n stops named "Stop 1".."Stop n" with ids "S1".."Sn".
func Stops(n int) []domain.Stop {
	out := make([]domain.Stop, n)
	for i := range out {
		out[i] = domain.Stop{
			ID:   domain.Text(fmt.Sprintf("S%d", i+1)),
			Name: domain.Text(fmt.Sprintf("Stop %d", i+1)),
			Lat:  domain.Num(40 + float64(i)/100),
			Lon:  domain.Num(-73 - float64(i)/100),
		}
	}
	return out
}
