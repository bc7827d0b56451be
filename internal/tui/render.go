package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"transitdash/internal/present"
	"transitdash/internal/view"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("218"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

const barWidth = 30

func (m *Model) View() string {
	var b strings.Builder
	if m.mode == modeMenu {
		m.renderMenu(&b)
	} else {
		m.renderView(&b)
	}

	switch m.mode {
	case modeFilter, modeInput, modeSelect:
		b.WriteString("\n" + m.prompt.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(m.help()) + "\n")
	return b.String()
}

func (m *Model) help() string {
	switch m.mode {
	case modeMenu:
		return "↑/↓ move • enter open • q quit"
	case modeView:
		h := "←/→ page • tab list • / filter • s select"
		if len(m.entry.Inputs) > 0 {
			h += " • i input • enter submit"
		}
		if m.entry.Name == tripPlanner {
			h += " • e end stop"
		}
		return h + " • esc back • q quit"
	case modeInput:
		return "enter next/apply • tab next field • esc cancel"
	default:
		return "enter apply • esc cancel"
	}
}

func (m *Model) renderMenu(b *strings.Builder) {
	b.WriteString(titleStyle.Render("transitdash") + "\n\n")
	for i, e := range m.entries {
		line := fmt.Sprintf("  %-18s %s", e.Name, e.Title)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line[2:])
		}
		b.WriteString(line + "\n")
	}
}

func (m *Model) renderView(b *strings.Builder) {
	s := m.snap
	b.WriteString(titleStyle.Render(s.Title) + " " + statusBadge(s.Status) + "\n")
	if s.Error != "" {
		b.WriteString(errorStyle.Render(s.Error) + "\n")
	}
	if s.Filter != "" {
		b.WriteString(dimStyle.Render("filter: "+s.Filter) + "\n")
	}
	if len(m.entry.Inputs) > 0 {
		parts := make([]string, 0, len(m.entry.Inputs))
		for _, name := range m.entry.Inputs {
			parts = append(parts, name+"="+s.Inputs[name])
		}
		b.WriteString(dimStyle.Render(strings.Join(parts, "  ")) + "\n")
	}

	if len(s.Facts) > 0 {
		b.WriteString("\n" + renderFacts(s.Facts))
	}
	if d := s.Detail; d != nil {
		b.WriteString("\n" + titleStyle.Render("Detail "+d.Key) + " " + statusBadge(d.Status) + "\n")
		switch {
		case d.Error != "":
			b.WriteString(errorStyle.Render(d.Error) + "\n")
		case d.Status == view.StatusReady && !d.Found:
			b.WriteString("not found\n")
		default:
			b.WriteString(renderFacts(d.Fields))
		}
	}
	if l := s.Map; l != nil {
		fmt.Fprintf(b, "\nmap: %s (%.5f, %.5f) → %s (%.5f, %.5f) zoom %d, %d tiles\n",
			l.FromLabel, l.From.Lat, l.From.Lon, l.ToLabel, l.To.Lat, l.To.Lon, l.Zoom, len(l.Tiles))
	}

	for _, t := range s.Tables {
		b.WriteString("\n" + m.renderTable(t))
	}
	for _, c := range s.Charts {
		b.WriteString("\n" + renderChart(c))
	}
}

func statusBadge(s view.Status) string {
	switch s {
	case view.StatusLoading:
		return dimStyle.Render("[loading…]")
	case view.StatusError:
		return errorStyle.Render("[error]")
	case view.StatusReady:
		return activeStyle.Render("[ready]")
	default:
		return dimStyle.Render("[" + s.String() + "]")
	}
}

func renderFacts(facts []present.Fact) string {
	var b strings.Builder
	for _, f := range facts {
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render(f.Label+":"), f.Value)
	}
	return b.String()
}

func (m *Model) renderTable(t present.Table) string {
	heading := t.Title
	if t.Name == m.list {
		heading = activeStyle.Render("● " + heading)
	}
	heading += dimStyle.Render(fmt.Sprintf("  page %d/%d • %d items", t.Page.Index, t.Page.TotalPages, t.Page.TotalItems))

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Cells
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(t.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(t.Rows) && t.Rows[row].Color != "" {
				return cellStyle.Foreground(lipgloss.Color(t.Rows[row].Color))
			}
			return cellStyle
		})
	return heading + "\n" + tbl.Render() + "\n"
}

func renderChart(s present.Series) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Name) + "\n")
	if len(s.Points) == 0 {
		b.WriteString(dimStyle.Render("no data") + "\n")
		return b.String()
	}

	maxValue, labelWidth := 0.0, 0
	for _, p := range s.Points {
		if p.Value > maxValue {
			maxValue = p.Value
		}
		if n := len([]rune(p.Label)); n > labelWidth {
			labelWidth = n
		}
	}
	if labelWidth > 24 {
		labelWidth = 24
	}
	for _, p := range s.Points {
		n := 0
		if maxValue > 0 && p.Value > 0 {
			n = int(p.Value / maxValue * barWidth)
		}
		label := p.Label
		if r := []rune(label); len(r) > labelWidth {
			label = string(r[:labelWidth-1]) + "…"
		}
		fmt.Fprintf(&b, "%-*s %s %.2f\n", labelWidth, label, barStyle.Render(strings.Repeat("█", n)), p.Value)
	}
	return b.String()
}
