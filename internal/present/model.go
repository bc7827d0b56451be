package present

import (
	"math"

	"transitdash/internal/domain"
	"transitdash/internal/view"
)

// Row is one table row. Color is the record's normalized color token, empty
// for tables that are not color coded.
type Row struct {
	Cells []string `json:"cells"`
	Color string   `json:"color,omitempty"`
}

// Table is a page of rows plus the pager state behind it. Name identifies the
// sub-list for paging actions.
type Table struct {
	Name    string         `json:"name"`
	Title   string         `json:"title"`
	Columns []string       `json:"columns"`
	Rows    []Row          `json:"rows"`
	Page    view.PageState `json:"page"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Fact is a labelled scalar such as a model error metric.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail is the panel shown for a looked up record.
type Detail struct {
	Key    string      `json:"key"`
	Status view.Status `json:"status"`
	Error  string      `json:"error,omitempty"`
	Found  bool        `json:"found"`
	Fields []Fact      `json:"fields,omitempty"`
	Color  string      `json:"color,omitempty"`
}

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Line is a straight segment between two labelled points on a map. Zoom
// frames both points and Tiles are the map tiles the segment spans.
type Line struct {
	From      Coord    `json:"from"`
	To        Coord    `json:"to"`
	FromLabel string   `json:"from_label"`
	ToLabel   string   `json:"to_label"`
	Center    Coord    `json:"center"`
	Zoom      int      `json:"zoom"`
	Tiles     []string `json:"tiles"`
}

// SeriesOf builds a chart series from rows. Rows whose value is missing are
// left out rather than plotted as zero.
func SeriesOf[T any](name string, rows []T, label func(T) string, value func(T) domain.Number) Series {
	s := Series{Name: name, Points: make([]Point, 0, len(rows))}
	for _, r := range rows {
		v := value(r)
		if !v.Valid {
			continue
		}
		s.Points = append(s.Points, Point{Label: label(r), Value: v.Value})
	}
	return s
}

// Rows maps records to table rows.
func Rows[T any](records []T, row func(T) Row) []Row {
	out := make([]Row, 0, len(records))
	for _, r := range records {
		out = append(out, row(r))
	}
	return out
}

// Shares converts weights to percentages of their total. Missing weights are
// skipped and stay missing in the output.
func Shares(weights []domain.Number) []domain.Number {
	var total float64
	for _, w := range weights {
		if w.Valid {
			total += w.Value
		}
	}
	out := make([]domain.Number, len(weights))
	if total == 0 {
		return out
	}
	for i, w := range weights {
		if w.Valid {
			out[i] = domain.Num(math.Round(w.Value/total*10000) / 100)
		}
	}
	return out
}

// Segment joins two optional coordinates into a Line. ok is false when either
// end has no coordinates.
func Segment(fromLabel string, fromLat, fromLon domain.Number, toLabel string, toLat, toLon domain.Number) (Line, bool) {
	if !fromLat.Valid || !fromLon.Valid || !toLat.Valid || !toLon.Valid {
		return Line{}, false
	}
	from := Coord{Lat: fromLat.Value, Lon: fromLon.Value}
	to := Coord{Lat: toLat.Value, Lon: toLon.Value}
	zoom := FitZoom(from, to)
	return Line{
		From:      from,
		To:        to,
		FromLabel: fromLabel,
		ToLabel:   toLabel,
		Center:    Coord{Lat: (from.Lat + to.Lat) / 2, Lon: (from.Lon + to.Lon) / 2},
		Zoom:      zoom,
		Tiles:     TilesCovering(from, to, zoom),
	}, true
}
