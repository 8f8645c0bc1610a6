package analysis

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finsight/internal/cli"
)

// Styles contains all styling definitions for report formatting.
type Styles struct {
	// Base styles from CLI package
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	// Report-specific styles
	Box         lipgloss.Style
	Score       lipgloss.Style
	High        lipgloss.Style
	Medium      lipgloss.Style
	Low         lipgloss.Style
	CategoryBox lipgloss.Style
	InsightBox  lipgloss.Style
	AlertBox    lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.Score = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	s.High = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.ErrorColor)

	s.Medium = lipgloss.NewStyle().
		Foreground(cli.WarningColor)

	s.Low = lipgloss.NewStyle().
		Foreground(cli.SubtleColor)

	s.CategoryBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.InfoColor).
		Padding(0, 1).
		MarginTop(1)

	s.InsightBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(cli.InfoColor).
		Padding(0, 1).
		MarginTop(1)

	s.AlertBox = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(cli.WarningColor).
		Padding(0, 1).
		MarginTop(1)

	return s
}

// WithWidth returns a new Styles instance adjusted for the given terminal width.
func (s *Styles) WithWidth(width int) *Styles {
	newStyles := *s

	if width > 0 && width < 100 {
		newStyles.Box = s.Box.Width(width - 4)
		newStyles.CategoryBox = s.CategoryBox.Width(width - 4)
		newStyles.InsightBox = s.InsightBox.Width(width - 4)
		newStyles.AlertBox = s.AlertBox.Width(width - 4)
	}

	return &newStyles
}

// ForPriority returns the style for a priority level.
func (s *Styles) ForPriority(priority Priority) lipgloss.Style {
	switch priority {
	case PriorityHigh:
		return s.High
	case PriorityMedium:
		return s.Medium
	case PriorityLow:
		return s.Low
	default:
		return s.Normal
	}
}

// ForHealth returns the style for a 0-100 health score.
func (s *Styles) ForHealth(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return s.Success
	case score >= 60:
		return s.Info
	case score >= 40:
		return s.Warning
	default:
		return s.Error
	}
}

// RenderProgressBar creates a bar of the given width filled to progress (0-1).
func (s *Styles) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}

	filled := int(float64(width) * progress)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return repeatChar("█", filled) + repeatChar("░", width-filled)
}

// RenderBox renders content in a styled box with optional title.
func (s *Styles) RenderBox(content string, title string, style lipgloss.Style) string {
	if title != "" {
		// lipgloss v1.1.0 has no border titles
		titleStyled := s.Info.Bold(true).Render(" " + title + " ")
		return style.Render(titleStyled + "\n" + content)
	}
	return style.Render(content)
}

func repeatChar(char string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(char, n)
}
