package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows under a header. Plain mode aligns columns with spaces
// and a dashed rule; TTY mode draws a rounded border.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends a row, padding missing cells with blanks.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if i < len(t.widths) {
			if n := len(stripAnsi(cell)); n > t.widths[i] {
				t.widths[i] = n
			}
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}
	if !EnableColors() {
		return t.renderPlain()
	}
	return t.renderStyled()
}

func (t *Table) renderPlain() string {
	var b strings.Builder
	line := func(cells []string) {
		parts := make([]string, 0, len(t.widths))
		for i, w := range t.widths {
			parts = append(parts, padRightAnsi(cells[i], w))
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}

	line(t.headers)
	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("-", w)
	}
	line(rule)
	for _, row := range t.rows {
		line(row)
	}
	return b.String()
}

func (t *Table) renderStyled() string {
	var b strings.Builder
	header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	border := lipgloss.NewStyle().Foreground(colorGray)

	total := -1
	for _, w := range t.widths {
		total += w + 3
	}
	rule := strings.Repeat("─", total+2)

	row := func(cells []string, style lipgloss.Style) {
		b.WriteString(border.Render("│") + " ")
		for i, w := range t.widths {
			if i > 0 {
				b.WriteString(border.Render(" │ "))
			}
			b.WriteString(style.Render(padRightAnsi(cells[i], w)))
		}
		b.WriteString(" " + border.Render("│") + "\n")
	}

	b.WriteString(border.Render("╭"+rule+"╮") + "\n")
	row(t.headers, header)
	b.WriteString(border.Render("├"+rule+"┤") + "\n")
	for _, cells := range t.rows {
		row(cells, lipgloss.NewStyle())
	}
	b.WriteString(border.Render("╰"+rule+"╯") + "\n")
	return b.String()
}

// Section renders a header, an underline and the content.
func Section(title, content string) string {
	var b strings.Builder
	b.WriteString(Header(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", len(title)))
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// stripAnsi removes SGR escape sequences so widths count visible runes.
func stripAnsi(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// padRightAnsi pads a string that may contain ANSI codes.
func padRightAnsi(s string, width int) string {
	n := len(stripAnsi(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
