// Package tui is the terminal front end: a bubbletea program that owns one
// dashboard and shows one view at a time.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"transitdash/internal/dashboard"
)

type mode int

const (
	modeMenu mode = iota
	modeView
	modeFilter
	modeInput
	modeSelect
)

const tripPlanner = "trip_planner"

type Model struct {
	ctx    context.Context
	dash   *dashboard.Dashboard
	msgs   chan tea.Msg
	logger *slog.Logger

	entries []dashboard.Entry
	cursor  int

	entry  dashboard.Entry
	snap   dashboard.Snapshot
	list   string
	mode   mode
	prompt textinput.Model
	// field indexes entry.Inputs while editing inputs.
	field  int
	values map[string]string
	// target is the list a select applies to; the trip planner picks
	// "start" or "end".
	target string
	notice string
	width  int
}

func New(ctx context.Context, src dashboard.Source, logger *slog.Logger, opts ...dashboard.Option) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		ctx:     ctx,
		msgs:    make(chan tea.Msg, 16),
		logger:  logger.With("component", "tui"),
		entries: dashboard.Catalog(),
		prompt:  textinput.New(),
		width:   100,
	}
	m.prompt.CharLimit = 128
	m.dash = dashboard.New(src, channelRunner{ctx: ctx, msgs: m.msgs}, opts...)
	return m
}

func (m *Model) Init() tea.Cmd {
	return listen(m.ctx, m.msgs)
}

// Close tears down the open view and its clock.
func (m *Model) Close() {
	m.dash.CloseAll()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case completionMsg:
		if msg.apply() {
			if m.mode != modeMenu && msg.view == m.entry.Name {
				m.refresh()
			}
		} else {
			m.logger.Debug("discarded stale result", "view", msg.view)
		}
		return m, listen(m.ctx, m.msgs)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modeView:
			return m.updateView(msg)
		default:
			return m.updatePrompt(msg)
		}
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		m.open(m.entries[m.cursor])
	}
	return m, nil
}

func (m *Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		if err := m.dash.Close(m.entry.Name); err != nil {
			m.logger.Warn("closing view failed", "view", m.entry.Name, "error", err)
		}
		m.mode = modeMenu
		m.entry = dashboard.Entry{}
		m.snap = dashboard.Snapshot{}
		m.notice = ""
	case "right", "l", "n":
		m.apply(dashboard.Action{Type: dashboard.ActionNext, List: m.list})
	case "left", "h", "p":
		m.apply(dashboard.Action{Type: dashboard.ActionPrev, List: m.list})
	case "tab":
		m.nextList()
	case "/":
		return m, m.startPrompt(modeFilter, "filter: ", m.snap.Filter)
	case "i":
		if len(m.entry.Inputs) == 0 {
			m.notice = "this view takes no input"
			return m, nil
		}
		m.field = 0
		return m, m.startPrompt(modeInput, m.entry.Inputs[0]+": ", m.values[m.entry.Inputs[0]])
	case "enter":
		m.apply(dashboard.Action{Type: dashboard.ActionSubmit})
	case "s":
		m.target = m.list
		if m.entry.Name == tripPlanner {
			m.target = "start"
		}
		return m, m.startPrompt(modeSelect, m.target+" id: ", "")
	case "e":
		if m.entry.Name == tripPlanner {
			m.target = "end"
			return m, m.startPrompt(modeSelect, "end id: ", "")
		}
	}
	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endPrompt()
		return m, nil
	case "tab":
		if m.mode == modeInput {
			m.values[m.entry.Inputs[m.field]] = m.prompt.Value()
			return m, m.nextField()
		}
	case "enter":
		value := m.prompt.Value()
		switch m.mode {
		case modeFilter:
			m.endPrompt()
			m.apply(dashboard.Action{Type: dashboard.ActionFilter, List: m.list, Text: value})
		case modeSelect:
			m.endPrompt()
			m.apply(dashboard.Action{Type: dashboard.ActionSelect, List: m.target, Key: value})
		case modeInput:
			m.values[m.entry.Inputs[m.field]] = value
			if m.field < len(m.entry.Inputs)-1 {
				return m, m.nextField()
			}
			m.endPrompt()
			m.apply(dashboard.Action{Type: dashboard.ActionInput, Params: m.values})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) open(e dashboard.Entry) {
	if err := m.dash.Open(e.Name); err != nil {
		m.notice = err.Error()
		return
	}
	m.entry = e
	m.mode = modeView
	m.list = ""
	m.notice = ""
	m.refresh()
	m.values = make(map[string]string, len(e.Inputs))
	for k, v := range m.snap.Inputs {
		m.values[k] = v
	}
}

func (m *Model) apply(a dashboard.Action) {
	a.View = m.entry.Name
	if err := m.dash.Apply(a); err != nil {
		m.notice = err.Error()
	} else {
		m.notice = ""
	}
	m.refresh()
}

func (m *Model) refresh() {
	snap, err := m.dash.Snapshot(m.entry.Name)
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.snap = snap
	if m.list == "" && len(snap.Tables) > 0 {
		m.list = snap.Tables[0].Name
	}
}

func (m *Model) nextList() {
	tables := m.snap.Tables
	if len(tables) == 0 {
		return
	}
	for i, t := range tables {
		if t.Name == m.list {
			m.list = tables[(i+1)%len(tables)].Name
			return
		}
	}
	m.list = tables[0].Name
}

func (m *Model) startPrompt(md mode, prompt, value string) tea.Cmd {
	m.mode = md
	m.prompt.Prompt = prompt
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	return m.prompt.Focus()
}

func (m *Model) nextField() tea.Cmd {
	m.field = (m.field + 1) % len(m.entry.Inputs)
	name := m.entry.Inputs[m.field]
	return m.startPrompt(modeInput, name+": ", m.values[name])
}

func (m *Model) endPrompt() {
	m.prompt.Blur()
	m.mode = modeView
}
