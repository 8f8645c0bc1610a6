// Package cli holds the terminal pieces shared by the finsight commands:
// message styles, boxes, progress bars and interrupt handling.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Report palette. The analysis formatter maps priorities and health levels
// onto the same colors so command output and reports read alike.
var (
	PrimaryColor = lipgloss.Color("#2F6FDB")
	SuccessColor = lipgloss.Color("#3FB68B")
	WarningColor = lipgloss.Color("#F2B134")
	ErrorColor   = lipgloss.Color("#E5484D")
	InfoColor    = lipgloss.Color("#6CB6D9")
	SubtleColor  = lipgloss.Color("#6B7280")
)

// Shared styles.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor).MarginBottom(1)
	SuccessStyle  = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle   = lipgloss.NewStyle().Foreground(SubtleColor)

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(1, 2)
)

// Message icons.
const (
	SuccessIcon = "✓"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	MoneyIcon   = "💶"
)

// message pairs a leading icon with the style of one kind of status line.
type message struct {
	style lipgloss.Style
	icon  string
}

func (m message) render(text string) string {
	return m.style.Render(m.icon + " " + text)
}

var (
	successMessage = message{style: SuccessStyle, icon: SuccessIcon}
	warningMessage = message{style: WarningStyle, icon: WarningIcon}
	infoMessage    = message{style: InfoStyle, icon: InfoIcon}
	titleMessage   = message{style: TitleStyle, icon: MoneyIcon}
)

// FormatSuccess renders a finished import, sync or delete.
func FormatSuccess(text string) string { return successMessage.render(text) }

// FormatWarning renders skipped records, dry runs and empty results.
func FormatWarning(text string) string { return warningMessage.render(text) }

// FormatInfo renders hints such as category tips.
func FormatInfo(text string) string { return infoMessage.render(text) }

// FormatTitle renders the heading of a long-running command.
func FormatTitle(text string) string { return titleMessage.render(text) }

// RenderBox renders a titled summary box, as used for import counts and
// stored months.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return summaryBox.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
