// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mle-tui/internal/model"
)

func TestNewThemeModes(t *testing.T) {
	tests := []struct {
		mode     string
		wantDark bool
	}{
		{"dark", true},
		{"DARK", true},
		{"light", false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			theme := NewTheme(tt.mode)
			if theme == nil {
				t.Fatal("NewTheme() returned nil")
			}
			if theme.IsDark != tt.wantDark {
				t.Errorf("IsDark = %v, want %v", theme.IsDark, tt.wantDark)
			}
		})
	}
}

func TestThemeUsesBaseColors(t *testing.T) {
	theme := NewTheme("dark")

	if got := theme.App.GetForeground(); got != lipgloss.TerminalColor(TextPrimary) {
		t.Errorf("App foreground = %v, want TextPrimary", got)
	}
	if got := theme.ReportPane.GetForeground(); got != lipgloss.TerminalColor(TextPrimary) {
		t.Errorf("ReportPane foreground = %v, want TextPrimary", got)
	}
	if got := theme.FormBox.GetBackground(); got != lipgloss.TerminalColor(Surface) {
		t.Errorf("FormBox background = %v, want Surface", got)
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"SystemBubble", theme.SystemBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"ErrorBox", theme.ErrorBox},
		{"FormBox", theme.FormBox},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style should render its content", s.name)
		}
	}
}

func TestMsgTypeBadge(t *testing.T) {
	theme := NewTheme("dark")

	if got := theme.MsgTypeBadge(model.MsgTypeNone); got != "" {
		t.Errorf("MsgTypeBadge(none) = %q, want empty", got)
	}
	for _, mt := range []model.MsgType{model.MsgTypeRequirement, model.MsgTypePlan, model.MsgTypeCode, model.MsgTypeSelect} {
		if got := theme.MsgTypeBadge(mt); !strings.Contains(got, string(mt)) {
			t.Errorf("MsgTypeBadge(%s) = %q, should contain the type name", mt, got)
		}
	}
}

func TestRoleLabel(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		role model.Role
		want string
	}{
		{model.RoleUser, "You"},
		{model.RoleAssistant, "Agent"},
		{model.RoleSystem, "System"},
	}
	for _, tt := range tests {
		if got := theme.RoleLabel(tt.role); !strings.Contains(got, tt.want) {
			t.Errorf("RoleLabel(%s) = %q, want it to contain %q", tt.role, got, tt.want)
		}
	}
}

func TestStatusIndicators(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		kind, marker string
	}{
		{"success", StatusIndicators.Success},
		{"error", StatusIndicators.Error},
		{"warning", StatusIndicators.Warning},
		{"info", StatusIndicators.Info},
		{"unknown", StatusIndicators.Info},
	}
	for _, tt := range tests {
		got := theme.Status(tt.kind, "saved")
		if !strings.Contains(got, tt.marker) || !strings.Contains(got, "saved") {
			t.Errorf("Status(%s) = %q, want marker %q and text", tt.kind, got, tt.marker)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	if got := BrailleSpinner.Duration(); got != time.Second/12 {
		t.Errorf("Duration() = %v, want %v", got, time.Second/12)
	}
	if got := (SpinnerConfig{}).Duration(); got != 100*time.Millisecond {
		t.Errorf("zero FPS Duration() = %v, want 100ms", got)
	}

	b := LineSpinner.Bubble()
	if len(b.Frames) != 4 {
		t.Errorf("Bubble() frames = %d, want 4", len(b.Frames))
	}
}
