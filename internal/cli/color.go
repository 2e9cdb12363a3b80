package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 colors, close to what cargo prints.
var (
	colorBlue   = lipgloss.Color("12")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorRed    = lipgloss.Color("9")
	colorGray   = lipgloss.Color("8")
	colorCyan   = lipgloss.Color("14")
	colorWhite  = lipgloss.Color("15")
)

var (
	styleError   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	stylePipe    = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorGray)
	styleCyan    = lipgloss.NewStyle().Foreground(colorCyan)
)

func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success returns text styled as a success label.
func Success(s string) string { return render(styleHelp, s) }

// Code returns an error code such as E4001 styled like an error label.
func Code(s string) string { return render(styleError, s) }

// Pipe returns the gutter character used in diagnostics.
func Pipe() string { return render(stylePipe, "|") }

// Arrow returns the location arrow used in diagnostics.
func Arrow() string { return render(stylePipe, "-->") }

// Header returns bold text.
func Header(s string) string { return render(styleHeader, s) }

// Dim returns muted text.
func Dim(s string) string { return render(styleDim, s) }

// Highlight returns cyan text.
func Highlight(s string) string { return render(styleCyan, s) }

// Done marks a finished task.
func Done(s string) string { return render(lipgloss.NewStyle().Foreground(colorGreen), s) }

// Failed marks a failed task.
func Failed(s string) string { return render(lipgloss.NewStyle().Foreground(colorRed), s) }
