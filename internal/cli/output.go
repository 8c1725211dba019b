// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/jeranaias/mle-tui/internal/util"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// printer writes user-facing notifications. Status lines go to errOut so
// that stdout stays clean for report and JSON output.
type printer struct {
	out    io.Writer
	errOut io.Writer
}

func newPrinter(out, errOut io.Writer) *printer {
	color.NoColor = !ColorsEnabled()
	return &printer{out: out, errOut: errOut}
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintf(p.errOut, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func (p *printer) info(format string, args ...any) {
	fmt.Fprintf(p.errOut, "%s %s\n", color.CyanString("›"), fmt.Sprintf(format, args...))
}

func (p *printer) warn(format string, args ...any) {
	fmt.Fprintf(p.errOut, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

func (p *printer) fail(format string, args ...any) {
	fmt.Fprintf(p.errOut, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

func (p *printer) hint(text string) {
	fmt.Fprintln(p.errOut, color.HiBlackString("  "+text))
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown styles Markdown for the terminal when stdout is a TTY and
// returns it wrapped but unstyled otherwise.
func renderMarkdown(src, style string) string {
	width := GetTerminalWidth()
	if !IsStdoutTTY() || !ColorsEnabled() {
		return util.Wrap(src, width)
	}

	opt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width-2))
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
