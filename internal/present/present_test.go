package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitdash/internal/domain"
)

func TestColor(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"FF0000", "#FF0000"},
		{"#FF0000", "#FF0000"},
		{"ff0000", "#FF0000"},
		{"", "#FFFFFF"},
		{"NA", "#FFFFFF"},
		{"#0f0", "#00FF00"},
		{"GGGGGG", "#FFFFFF"},
		{" 00aeef ", "#00AEEF"},
		{"#12345", "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(tt.raw))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "NA", Cell(""))
	assert.Equal(t, "NA", Cell("NA"))
	assert.Equal(t, "M15", Cell("M15"))

	assert.Equal(t, "NA", Decimal(domain.Number{}, 2))
	assert.Equal(t, "0.00", Decimal(domain.Num(0), 2))
	assert.Equal(t, "12.35", Decimal(domain.Num(12.346), 2))

	assert.Equal(t, "NA", Minutes(domain.Number{}))
	assert.Equal(t, "45 minutes", Minutes(domain.Num(0.75)))
	assert.Equal(t, "3.10 km", Kilometers(domain.Num(3.1)))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2024-01-15", Date("20240115"))
	assert.Equal(t, "2024-1-15", Date("2024-1-15"))
	assert.Equal(t, "NA", Date(""))
}

func TestSeriesOfSkipsMissingValues(t *testing.T) {
	type row struct {
		name  string
		speed domain.Number
	}
	rows := []row{
		{"A", domain.Num(20)},
		{"B", domain.Number{}},
		{"C", domain.Num(0)},
	}

	s := SeriesOf("speed", rows,
		func(r row) string { return r.name },
		func(r row) domain.Number { return r.speed },
	)

	require.Len(t, s.Points, 2)
	assert.Equal(t, Point{Label: "A", Value: 20}, s.Points[0])
	assert.Equal(t, Point{Label: "C", Value: 0}, s.Points[1], "zero is a real value")
}

func TestShares(t *testing.T) {
	got := Shares([]domain.Number{domain.Num(0.5), domain.Number{}, domain.Num(0.25), domain.Num(0.25)})
	assert.Equal(t, domain.Num(50), got[0])
	assert.False(t, got[1].Valid)
	assert.Equal(t, domain.Num(25), got[2])

	assert.False(t, Shares([]domain.Number{domain.Num(0)})[0].Valid)
}

func TestSegment(t *testing.T) {
	line, ok := Segment("Main St", domain.Num(40.7), domain.Num(-74.0), "Elm Ave", domain.Num(40.8), domain.Num(-73.9))
	require.True(t, ok)
	assert.InDelta(t, 40.75, line.Center.Lat, 1e-9)
	assert.InDelta(t, -73.95, line.Center.Lon, 1e-9)
	assert.Greater(t, line.Zoom, 5)
	assert.NotEmpty(t, line.Tiles)

	_, ok = Segment("a", domain.Number{}, domain.Num(1), "b", domain.Num(1), domain.Num(1))
	assert.False(t, ok)
}
