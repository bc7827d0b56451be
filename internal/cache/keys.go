package cache

const (
	KeyRoutes    = "routes"
	KeyStops     = "stops"
	KeyTrips     = "trips"
	KeyCalendars = "calendars"
)

// Keys lists every collection the response cache holds.
var Keys = []string{KeyRoutes, KeyStops, KeyTrips, KeyCalendars}
