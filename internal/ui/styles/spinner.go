// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SpinnerConfig is a frame set and its playback rate.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

var (
	// BrailleSpinner is the default loading indicator.
	BrailleSpinner = SpinnerConfig{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    12,
	}

	// LineSpinner works on terminals without Unicode fonts.
	LineSpinner = SpinnerConfig{
		Frames: []string{"-", "\\", "|", "/"},
		FPS:    8,
	}
)

// Duration returns the time per frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Second / time.Duration(s.FPS)
}

// Bubble converts the config to a bubbles spinner definition.
func (s SpinnerConfig) Bubble() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}
