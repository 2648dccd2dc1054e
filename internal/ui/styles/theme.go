// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the lip gloss styles the chat loop and list commands render
// with. Styles are grouped by the surface they draw.
type Theme struct {
	// Terminal capabilities detected at startup
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// BANNER AND HEADINGS
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Divider  lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	ModelTag       lipgloss.Style
	TurnIndex      lipgloss.Style
	TurnBody       lipgloss.Style

	// ==========================================================================
	// INPUT PROMPT
	// ==========================================================================

	Prompt       lipgloss.Style
	Continuation lipgloss.Style
	Thinking     lipgloss.Style

	// ==========================================================================
	// STATUS LINE
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style

	// ==========================================================================
	// LISTS (sessions, prompts, picker)
	// ==========================================================================

	ListHeader   lipgloss.Style
	ListRow      lipgloss.Style
	ListSelected lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status styles with shapes and high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Muted        lipgloss.Style
	LinkStyle    lipgloss.Style
}

// NewTheme creates a theme using the terminal's detected background.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// NewThemeForMode creates a theme honoring a configured mode: "dark" and
// "light" override background detection, anything else behaves like auto.
func NewThemeForMode(mode string) *Theme {
	switch mode {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
	return NewTheme()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Banner and headings
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	// Transcript
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(UserLabelFg)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(AssistantLabelFg)

	t.SystemLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(SystemLabelFg)

	t.ModelTag = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.TurnIndex = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TurnBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Input prompt
	t.Prompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Continuation = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Thinking = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	// Status line
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Lists
	t.ListHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		Underline(true)

	t.ListRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ListSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true)

	// ACCESSIBILITY: high contrast + bold so states read without color
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.LinkStyle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
}

// RoleLabel returns the style for a transcript role label.
func (t *Theme) RoleLabel(role string) lipgloss.Style {
	switch role {
	case "user":
		return t.UserLabel
	case "assistant":
		return t.AssistantLabel
	default:
		return t.SystemLabel
	}
}
