package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"transitdash/internal/view"
)

// completionMsg carries a finished fetch, or a clock tick, back into the
// program loop where it is applied.
type completionMsg struct {
	view  string
	apply view.Completion
}

// channelRunner runs view tasks off the program loop and queues their
// completions on msgs. listen feeds the queue into Update one message at a
// time.
type channelRunner struct {
	ctx  context.Context
	msgs chan tea.Msg
}

func (r channelRunner) Run(viewName string, t view.Task) {
	if t == nil {
		return
	}
	go func() {
		c := t(r.ctx)
		select {
		case r.msgs <- completionMsg{view: viewName, apply: c}:
		case <-r.ctx.Done():
		}
	}()
}

func (r channelRunner) Post(viewName string, c view.Completion) {
	select {
	case r.msgs <- completionMsg{view: viewName, apply: c}:
	default:
	}
}

func listen(ctx context.Context, msgs <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-msgs:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
