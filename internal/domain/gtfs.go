package domain

import "strconv"

type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCableTram  RouteType = 5
	RouteTypeAerialLift RouteType = 6
	RouteTypeFunicular  RouteType = 7
	RouteTypeTrolleybus RouteType = 11
	RouteTypeMonorail   RouteType = 12
)

func (t RouteType) String() string {
	switch t {
	case RouteTypeTram:
		return "tram"
	case RouteTypeSubway:
		return "subway"
	case RouteTypeRail:
		return "rail"
	case RouteTypeBus:
		return "bus"
	case RouteTypeFerry:
		return "ferry"
	case RouteTypeCableTram:
		return "cable_tram"
	case RouteTypeAerialLift:
		return "aerial_lift"
	case RouteTypeFunicular:
		return "funicular"
	case RouteTypeTrolleybus:
		return "trolleybus"
	case RouteTypeMonorail:
		return "monorail"
	default:
		return "unknown"
	}
}

// ParseRouteType maps the raw route_type field to a RouteType. ok is false
// when the field is missing or not an integer.
func ParseRouteType(raw Text) (RouteType, bool) {
	if raw.Missing() {
		return 0, false
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return RouteType(n), true
}

type Route struct {
	ID        Text `json:"route_id"`
	AgencyID  Text `json:"agency_id"`
	ShortName Text `json:"route_short_name"`
	LongName  Text `json:"route_long_name"`
	Desc      Text `json:"route_desc"`
	Type      Text `json:"route_type"`
	URL       Text `json:"route_url"`
	Color     Text `json:"route_color"`
	TextColor Text `json:"route_text_color"`
}

type Stop struct {
	ID            Text   `json:"stop_id"`
	Code          Text   `json:"stop_code"`
	Name          Text   `json:"stop_name"`
	Desc          Text   `json:"stop_desc"`
	Lat           Number `json:"stop_lat"`
	Lon           Number `json:"stop_lon"`
	ZoneID        Text   `json:"zone_id"`
	LocationType  Text   `json:"location_type"`
	ParentStation Text   `json:"parent_station"`
}

type Trip struct {
	ID          Text `json:"trip_id"`
	RouteID     Text `json:"route_id"`
	ServiceID   Text `json:"service_id"`
	Headsign    Text `json:"trip_headsign"`
	DirectionID Text `json:"direction_id"`
	BlockID     Text `json:"block_id"`
	ShapeID     Text `json:"shape_id"`
}

// Calendar is a row of the feed's calendar table. The source serves these
// from its calendar_dates endpoint.
type Calendar struct {
	ServiceID Text   `json:"service_id"`
	Monday    Number `json:"monday"`
	Tuesday   Number `json:"tuesday"`
	Wednesday Number `json:"wednesday"`
	Thursday  Number `json:"thursday"`
	Friday    Number `json:"friday"`
	Saturday  Number `json:"saturday"`
	Sunday    Number `json:"sunday"`
	StartDate Text   `json:"start_date"`
	EndDate   Text   `json:"end_date"`
}

// Weekdays returns the service flags from Monday to Sunday.
func (c Calendar) Weekdays() [7]Number {
	return [7]Number{c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday, c.Sunday}
}
