package domain

// RouteStats is one row of the per-route aggregate the source computes for a
// service date. The headway fields are minutes, distances kilometers, speeds
// km/h. Durations are hours except where the endpoint converts them.
type RouteStats struct {
	RouteID          Text   `json:"route_id"`
	RouteShortName   Text   `json:"route_short_name"`
	RouteLongName    Text   `json:"route_long_name"`
	RouteType        Text   `json:"route_type"`
	RouteColor       Text   `json:"route_color"`
	NumTrips         Number `json:"num_trips"`
	NumTripStarts    Number `json:"num_trip_starts"`
	NumTripEnds      Number `json:"num_trip_ends"`
	IsLoop           Number `json:"is_loop"`
	IsBidirectional  Number `json:"is_bidirectional"`
	StartTime        Text   `json:"start_time"`
	EndTime          Text   `json:"end_time"`
	MaxHeadway       Number `json:"max_headway"`
	MinHeadway       Number `json:"min_headway"`
	MeanHeadway      Number `json:"mean_headway"`
	PeakNumTrips     Number `json:"peak_num_trips"`
	PeakStartTime    Text   `json:"peak_start_time"`
	PeakEndTime      Text   `json:"peak_end_time"`
	ServiceDistance  Number `json:"service_distance"`
	ServiceDuration  Number `json:"service_duration"`
	ServiceSpeed     Number `json:"service_speed"`
	MeanTripDistance Number `json:"mean_trip_distance"`
	MeanTripDuration Number `json:"mean_trip_duration"`
}

type FrequentRoutes struct {
	Most  []RouteStats `json:"most_frequent_routes"`
	Least []RouteStats `json:"least_frequent_routes"`
}

type RouteSpeeds struct {
	Slowest []RouteStats `json:"slowest_routes"`
	Fastest []RouteStats `json:"fastest_routes"`
}

type RouteDistances struct {
	Shortest []RouteStats `json:"shortest_routes"`
	Longest  []RouteStats `json:"longest_routes"`
}

// PeakHourRoute counts a route's trips that start in the peak periods. The
// source aggregates the count into the trip_id column.
type PeakHourRoute struct {
	RouteStats
	TripCount   Number   `json:"trip_id"`
	TimePeriods []string `json:"time_period"`
}

type PlannedTrip struct {
	TripID         Text   `json:"trip_id"`
	RouteID        Text   `json:"route_id"`
	RouteShortName Text   `json:"route_short_name"`
	RouteLongName  Text   `json:"route_long_name"`
	RouteColor     Text   `json:"route_color"`
	DirectionID    Text   `json:"direction_id"`
	ShapeID        Text   `json:"shape_id"`
	StartTime      Text   `json:"start_time"`
	EndTime        Text   `json:"end_time"`
	NumStops       Number `json:"num_stops"`
	Duration       Number `json:"duration"`
	Distance       Number `json:"distance"`
	Speed          Number `json:"speed"`
}

// TripPlan is the answer to a stop-pair search. TotalResults is reported by
// the source and may exceed len(Trips).
type TripPlan struct {
	StartStopName Text          `json:"start_stop_name"`
	EndStopName   Text          `json:"end_stop_name"`
	StartStopID   Text          `json:"start_stop_id"`
	EndStopID     Text          `json:"end_stop_id"`
	TotalResults  int           `json:"total_results"`
	Trips         []PlannedTrip `json:"trips_between_stops"`
	Message       string        `json:"message,omitempty"`
}

type FeatureImportance struct {
	Feature    string `json:"Feature"`
	Importance Number `json:"Importance"`
}

type TrainingReport struct {
	Message           string              `json:"message"`
	MSE               Number              `json:"mse"`
	MAE               Number              `json:"mae"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
}

type DemandInput struct {
	RouteID     string  `json:"route_id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	TotalStops  int     `json:"total_stops"`
	AvgSpeed    float64 `json:"avg_speed"`
	AvgDuration float64 `json:"avg_duration"`
	AvgDistance float64 `json:"avg_distance"`
}

type DemandPrediction struct {
	PredictedDemand Number `json:"predicted_demand"`
}
