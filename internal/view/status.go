package view

import (
	"errors"
	"fmt"
)

// Status is the load state shared by every controller:
// idle -> loading -> ready | error. Only an explicit user action moves a
// controller back to loading.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "loading":
		*s = StatusLoading
	case "ready":
		*s = StatusReady
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

var (
	// ErrFetchFailed wraps network errors and non-2xx responses from the data source.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrValidationFailed is returned when required user input is missing or malformed.
	ErrValidationFailed = errors.New("validation failed")
)

func fetchFailed(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFetchFailed, name, err)
}
