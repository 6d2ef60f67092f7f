// Package styles provides shared lipgloss styles for UI components.
//
// This package centralizes color definitions and styling to ensure
// visual consistency across the report renderer, tables and progress
// indicators.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/rbee/internal/plug"
)

// Colors used throughout the UI. Updated by Init.
var (
	// Primary is the main accent color (cyan/teal)
	Primary color.Color = lipgloss.Color("62")

	// Success is used for SUCCESS results (green)
	Success color.Color = lipgloss.Color("82")

	// Warning is used for WARNING results (orange)
	Warning color.Color = lipgloss.Color("214")

	// Error is used for ERROR results (red)
	Error color.Color = lipgloss.Color("196")

	// Muted is used for secondary text like paths and summaries (gray)
	Muted color.Color = lipgloss.Color("240")

	// Normal is the standard text color (light gray)
	Normal color.Color = lipgloss.Color("252")
)

// Common styles
var (
	// Bold applies bold formatting
	Bold = lipgloss.NewStyle().Bold(true)

	// PrimaryStyle applies the primary color with bold
	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// SuccessStyle applies the success color
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	// WarningStyle applies the warning color
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	// ErrorStyle applies the error color
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	// MutedStyle applies the muted color
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)

	// NormalStyle applies the normal text color
	NormalStyle = lipgloss.NewStyle().Foreground(Normal)
)

// StatusStyle returns the style for a result status.
func StatusStyle(s plug.Status) lipgloss.Style {
	switch s {
	case plug.Success:
		return SuccessStyle
	case plug.Warning:
		return WarningStyle
	case plug.Error:
		return ErrorStyle.Bold(true)
	default:
		return NormalStyle
	}
}
