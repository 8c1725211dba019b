// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// =============================================================================
// DISPLAY WIDTH
// =============================================================================

// Ellipsis marks truncated text.
const Ellipsis = "…"

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most maxWidth columns, ending in an ellipsis
// when anything was cut. Wide characters are never split.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// FirstLine returns the first non-blank line of s, truncated to maxWidth.
func FirstLine(s string, maxWidth int) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return Truncate(line, maxWidth)
		}
	}
	return ""
}

// PadRight pads s with spaces to exactly width columns, truncating if longer.
func PadRight(s string, width int) string {
	if StringWidth(s) > width {
		s = Truncate(s, width)
	}
	return runewidth.FillRight(s, width)
}

// =============================================================================
// WRAPPING
// =============================================================================

// Wrap word-wraps s to width columns. Words longer than width are broken.
// Existing newlines are kept. A width of 0 or less returns s unchanged.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	return indent.String(s, uint(n))
}
