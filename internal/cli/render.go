package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cybersib/cybersib/internal/terminal"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	warning     = lipgloss.Color("#FFC107")
	info        = lipgloss.Color("#2196F3")
	muted       = lipgloss.Color("#6b7280")
)

// Styles holds the lipgloss styles used to print client output.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Prompt  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Success: lipgloss.NewStyle().Foreground(accent),
		Warning: lipgloss.NewStyle().Foreground(warning),
		Error:   lipgloss.NewStyle().Foreground(destructive),
		Info:    lipgloss.NewStyle().Foreground(info),
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(accent),
	}
}

// Line styles a terminal line by its kind.
func (s Styles) Line(l terminal.Line) string {
	switch l.Kind {
	case terminal.KindCommand:
		return s.Prompt.Render(l.Text)
	case terminal.KindInfo:
		return s.Info.Render(l.Text)
	case terminal.KindSuccess:
		return s.Success.Render(l.Text)
	case terminal.KindWarning:
		return s.Warning.Render(l.Text)
	case terminal.KindError:
		return s.Error.Render(l.Text)
	default:
		return s.Body.Render(l.Text)
	}
}

// Table is a static table rendered with aligned columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

func (t *Table) AddRow(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.Rows = append(t.Rows, row)
}

// View renders the table. An empty table renders as a muted "(none)".
func (t *Table) View(s Styles) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(s.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(s.Muted.Render("(none)"))
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	header := s.Bold.Padding(0, 1)
	cell := s.Body.Padding(0, 1)
	sep := s.Muted.Render("|")

	for i, h := range t.Headers {
		sb.WriteString(header.Width(widths[i] + 2).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
	for i, w := range widths {
		sb.WriteString(s.Muted.Render(strings.Repeat("-", w+2)))
		if i < len(widths)-1 {
			sb.WriteString(s.Muted.Render("+"))
		}
	}
	for _, row := range t.Rows {
		sb.WriteString("\n")
		for i := range widths {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			sb.WriteString(cell.Width(widths[i] + 2).Render(v))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
	}
	return sb.String()
}
