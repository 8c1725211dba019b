// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/mle-tui/internal/model"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER AND TABS
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Tab            lipgloss.Style
	TabActive      lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemLabel     lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	Timestamp       lipgloss.Style
	Badge           lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS BAR
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Spinner        lipgloss.Style
	ThinkingText   lipgloss.Style

	// ==========================================================================
	// REPORT PANE AND FORM
	// ==========================================================================

	ReportPane       lipgloss.Style
	Placeholder      lipgloss.Style
	FormBox          lipgloss.Style
	FormLabel        lipgloss.Style
	FormLabelFocused lipgloss.Style
	FormHint         lipgloss.Style
	FormOption       lipgloss.Style
	FormOptionActive lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	ErrorBox     lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme creates a theme for mode: auto, dark, light or notty.
// auto asks the terminal for its background.
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}

	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
	case "light":
		t.IsDark = false
	case "notty":
		t.ColorProfile = termenv.Ascii
	default:
		t.IsDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(t.IsDark)
	if t.ColorProfile == termenv.Ascii {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2)

	// Messages
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserBorder)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.SystemLabel = lipgloss.NewStyle().Bold(true).Foreground(Amber)
	t.UserBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBorder).
		PaddingLeft(1)
	t.AssistantBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBorder).
		PaddingLeft(1)
	t.SystemBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(SystemBorder).
		PaddingLeft(1)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Badge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Padding(0, 1)

	// Input and status bar
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Report pane and form
	t.ReportPane = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Background(Surface).
		Padding(1, 2)
	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(20)
	t.FormLabelFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		Width(20)
	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.FormOption = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.FormOptionActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)

	// Status
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Foreground(Rose).
		Padding(0, 1)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// MsgTypeBadge renders the label for an agent message type, or "" for
// untyped messages.
func (t *Theme) MsgTypeBadge(mt model.MsgType) string {
	if mt == model.MsgTypeNone {
		return ""
	}
	return t.Badge.Background(MsgTypeColor(mt)).Render(string(mt))
}

// RoleLabel renders the author label for a message role.
func (t *Theme) RoleLabel(r model.Role) string {
	switch r {
	case model.RoleUser:
		return t.UserLabel.Render(r.DisplayName())
	case model.RoleAssistant:
		return t.AssistantLabel.Render(r.DisplayName())
	default:
		return t.SystemLabel.Render(r.DisplayName())
	}
}

// Bubble returns the frame style for a message role.
func (t *Theme) Bubble(r model.Role) lipgloss.Style {
	switch r {
	case model.RoleUser:
		return t.UserBubble
	case model.RoleAssistant:
		return t.AssistantBubble
	default:
		return t.SystemBubble
	}
}

// Status renders text with the indicator and style for a status kind:
// success, error, warning or info.
func (t *Theme) Status(kind, text string) string {
	switch kind {
	case "success":
		return t.SuccessStyle.Render(StatusIndicators.Success + " " + text)
	case "error":
		return t.ErrorStyle.Render(StatusIndicators.Error + " " + text)
	case "warning":
		return t.WarningStyle.Render(StatusIndicators.Warning + " " + text)
	default:
		return t.InfoStyle.Render(StatusIndicators.Info + " " + text)
	}
}
