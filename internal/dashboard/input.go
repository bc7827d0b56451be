package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// bindParams overlays params onto q, matching keys against q's json field
// names. Unknown keys are ignored.
func bindParams[Q any](q Q, params map[string]string) (Q, error) {
	if len(params) == 0 {
		return q, nil
	}
	fields, err := inputsOf(q)
	if err != nil {
		return q, err
	}
	for k, v := range params {
		if _, ok := fields[k]; ok {
			fields[k] = v
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return q, fmt.Errorf("encoding input: %w", err)
	}
	var out Q
	if err := json.Unmarshal(data, &out); err != nil {
		return q, fmt.Errorf("decoding input: %w", err)
	}
	return out, nil
}

// inputsOf flattens a query struct of string fields into its json form.
func inputsOf[Q any](q Q) (map[string]string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encoding input: %w", err)
	}
	fields := map[string]string{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	return fields, nil
}

func inputNames[Q any]() []string {
	var zero Q
	fields, _ := inputsOf(zero)
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NormalizeStopName puts a stop name in canonical form: Unicode NFC, inner
// whitespace runs collapsed to one space, ends trimmed.
func NormalizeStopName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// DateQuery is the input of the per-date analyses. Date is YYYYMMDD.
type DateQuery struct {
	Date string `json:"date" validate:"required"`
}

func normalizeDate(q DateQuery) DateQuery {
	q.Date = strings.TrimSpace(q.Date)
	return q
}

// StopPair is the trip planner input.
type StopPair struct {
	Start string `json:"start_stop_name" validate:"required"`
	End   string `json:"end_stop_name" validate:"required"`
}

func normalizeStopPair(q StopPair) StopPair {
	q.Start = NormalizeStopName(q.Start)
	q.End = NormalizeStopName(q.End)
	return q
}

// TrainQuery carries no input; submitting it retrains the model.
type TrainQuery struct{}

// DemandQuery is the raw demand prediction form. Numbers stay text until
// validation has accepted them.
type DemandQuery struct {
	RouteID     string `json:"route_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	TotalStops  string `json:"total_stops" validate:"required,number"`
	AvgSpeed    string `json:"avg_speed" validate:"required,numeric"`
	AvgDuration string `json:"avg_duration" validate:"required,numeric"`
	AvgDistance string `json:"avg_distance" validate:"required,numeric"`
}

func normalizeDemand(q DemandQuery) DemandQuery {
	q.RouteID = strings.TrimSpace(q.RouteID)
	q.Date = strings.TrimSpace(q.Date)
	q.Time = strings.TrimSpace(q.Time)
	q.TotalStops = strings.TrimSpace(q.TotalStops)
	q.AvgSpeed = strings.TrimSpace(q.AvgSpeed)
	q.AvgDuration = strings.TrimSpace(q.AvgDuration)
	q.AvgDistance = strings.TrimSpace(q.AvgDistance)
	return q
}
