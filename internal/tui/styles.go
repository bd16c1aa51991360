package tui

import "github.com/charmbracelet/lipgloss"

// MinFormWidth is the minimum character width for the form pane.
const MinFormWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Width(12).
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	activeLabelStyle = labelStyle.
				Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths calculates the form and table pane widths from a total width.
// The form pane gets 2/5 (minimum MinFormWidth), the table pane gets the rest.
func PaneWidths(totalWidth int) (form, table int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	form = totalWidth * 2 / 5
	if form < MinFormWidth {
		form = MinFormWidth
	}
	table = totalWidth - form
	if table < 0 {
		table = 0
	}
	return form, table
}
