package dashboard

import (
	"errors"
	"time"

	"transitdash/internal/present"
	"transitdash/internal/view"
)

var (
	ErrUnknownView       = errors.New("unknown view")
	ErrViewNotOpen       = errors.New("view not open")
	ErrUnsupportedAction = errors.New("unsupported action")
)

type ActionType string

const (
	ActionFilter ActionType = "filter"
	ActionNext   ActionType = "next"
	ActionPrev   ActionType = "prev"
	ActionInput  ActionType = "input"
	ActionSubmit ActionType = "submit"
	ActionSelect ActionType = "select"
)

// Action is a user intent addressed to an open view. List names the sub-list
// for paging and selection; an empty List means the view's primary list.
type Action struct {
	Type   ActionType        `json:"type"`
	View   string            `json:"view"`
	List   string            `json:"list,omitempty"`
	Text   string            `json:"text,omitempty"`
	Key    string            `json:"key,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Snapshot is everything a front end needs to draw one view.
type Snapshot struct {
	View   string            `json:"view"`
	Title  string            `json:"title"`
	Status view.Status       `json:"status"`
	Error  string            `json:"error,omitempty"`
	Filter string            `json:"filter,omitempty"`
	Inputs map[string]string `json:"inputs,omitempty"`
	Tables []present.Table   `json:"tables,omitempty"`
	Charts []present.Series  `json:"charts,omitempty"`
	Detail *present.Detail   `json:"detail,omitempty"`
	Map    *present.Line     `json:"map,omitempty"`
	Facts  []present.Fact    `json:"facts,omitempty"`
	Time   *time.Time        `json:"time,omitempty"`
}

// Table returns the named table.
func (s Snapshot) Table(name string) (present.Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return present.Table{}, false
}

// View is one dashboard screen. Views are owned by a single goroutine and are
// never called concurrently.
type View interface {
	Name() string
	Title() string
	// Open activates the view, issuing its initial fetches through r.
	Open(r Runner)
	// Close tears the view down: in-flight results are discarded and timers
	// stopped.
	Close()
	Apply(a Action, r Runner) error
	Snapshot() Snapshot
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
