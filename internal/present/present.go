// Package present turns fetched records into display values: table cells,
// color tokens and chart series. Everything here is a pure function of its
// input.
package present

import (
	"math"
	"strconv"
	"strings"

	"transitdash/internal/domain"
)

const (
	// Placeholder is shown in place of a missing field.
	Placeholder = "NA"
	// DefaultColor is used when a record carries no usable color.
	DefaultColor = "#FFFFFF"
)

// Color normalizes a raw GTFS color to #RRGGBB. The leading "#" is optional,
// three digit shorthand is expanded and anything that is not hex falls back
// to DefaultColor.
func Color(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return DefaultColor
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return DefaultColor
		}
	}
	return "#" + strings.ToUpper(s)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Cell renders a text field, substituting Placeholder when it is missing.
func Cell(t domain.Text) string {
	if t.Missing() {
		return Placeholder
	}
	return strings.TrimSpace(string(t))
}

// Decimal renders n with the given number of decimals.
func Decimal(n domain.Number, places int) string {
	if !n.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(n.Value, 'f', places, 64)
}

// Integer renders n rounded to a whole number.
func Integer(n domain.Number) string {
	return Decimal(domain.Number{Value: math.Round(n.Value), Valid: n.Valid}, 0)
}

// Minutes renders a duration given in hours as whole minutes.
func Minutes(hours domain.Number) string {
	if !hours.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(math.Round(hours.Value*60), 'f', 0, 64) + " minutes"
}

// Kilometers renders a distance with two decimals.
func Kilometers(km domain.Number) string {
	if !km.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(km.Value, 'f', 2, 64) + " km"
}

// Date renders a YYYYMMDD service date as YYYY-MM-DD. Values of any other
// shape are shown as they are.
func Date(t domain.Text) string {
	if t.Missing() {
		return Placeholder
	}
	s := strings.TrimSpace(string(t))
	if len(s) != 8 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

// YesNo renders a 0/1 service flag.
func YesNo(n domain.Number) string {
	if n.Valid && n.Value != 0 {
		return "Yes"
	}
	return "No"
}

// Join renders a list of labels, or Placeholder when there are none.
func Join(parts []string) string {
	if len(parts) == 0 {
		return Placeholder
	}
	return strings.Join(parts, ", ")
}
