package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	badgeOK = lipgloss.NewStyle().
		Background(colorGreen).
		Foreground(lipgloss.Color("0")).
		Padding(0, 1).
		Bold(true)

	badgeDrift = lipgloss.NewStyle().
			Background(colorYellow).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	badgeError = lipgloss.NewStyle().
			Background(colorRed).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true)

	badgeInfo = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBlue).
			Padding(0, 2)
)

// RenderBadge renders a styled badge, or [TEXT] without colors.
func RenderBadge(text string, style lipgloss.Style) string {
	if !EnableColors() {
		return "[" + text + "]"
	}
	return style.Render(text)
}

// RenderOKBadge marks matching schemas.
func RenderOKBadge() string { return RenderBadge("OK", badgeOK) }

// RenderDriftBadge marks diverging schemas.
func RenderDriftBadge() string { return RenderBadge("DRIFT", badgeDrift) }

// RenderErrorBadge marks a failed step.
func RenderErrorBadge() string { return RenderBadge("ERROR", badgeError) }

// RenderInfoBadge renders a neutral badge such as a dialect name.
func RenderInfoBadge(text string) string { return RenderBadge(text, badgeInfo) }

// RenderTitle renders a banner line.
func RenderTitle(text string) string {
	if !EnableColors() {
		return "=== " + text + " ==="
	}
	return titleStyle.Render(text)
}

// KeyValue renders "key: value" with a muted key.
func KeyValue(key, value string) string {
	if !EnableColors() {
		return fmt.Sprintf("%s: %s", key, value)
	}
	return styleDim.Render(key+":") + " " + value
}
