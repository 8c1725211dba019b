// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/export"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// CONTROLLER COMMANDS
// =============================================================================

// sendCmd runs one chat send. Progress arrives as ChatEventMsg; the
// returned message only marks the end.
func (m *Model) sendCmd(text string) tea.Cmd {
	ctrl, ctx := m.chat, m.ctx
	return func() tea.Msg {
		handle, err := ctrl.SendText(ctx, text)
		return SendDoneMsg{Handle: handle, Err: err}
	}
}

func (m *Model) fetchLatestCmd() tea.Cmd {
	ctrl, ctx := m.report, m.ctx
	return func() tea.Msg {
		return FetchDoneMsg{Err: ctrl.FetchLatest(ctx)}
	}
}

func (m *Model) generateCmd(req report.Request) tea.Cmd {
	ctrl, ctx := m.report, m.ctx
	return func() tea.Msg {
		outcome, err := ctrl.Generate(ctx, req)
		return GenerateDoneMsg{Outcome: outcome, Err: err}
	}
}

func (m *Model) awaitCmd() tea.Cmd {
	ctrl, ctx := m.report, m.ctx
	return func() tea.Msg {
		changed, err := ctrl.AwaitNewReport(ctx)
		return AwaitDoneMsg{Changed: changed, Err: err}
	}
}

// =============================================================================
// EXPORT COMMANDS
// =============================================================================

func (m *Model) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = m.cfg.Report.OutputDir
	return opts
}

func (m *Model) saveReportCmd() tea.Cmd {
	data := m.report.Report()
	opts := m.exportOptions()
	return func() tea.Msg {
		if data == nil {
			return SavedMsg{Err: errors.New("no report to save")}
		}
		path, err := export.SaveReport(data, export.FormatMarkdown, opts)
		return SavedMsg{Path: path, Err: err}
	}
}

func (m *Model) saveTranscriptCmd() tea.Cmd {
	msgs := m.chat.Messages()
	project := m.chat.Project()
	opts := m.exportOptions()
	return func() tea.Msg {
		path, err := export.SaveTranscript(msgs, project, export.FormatMarkdown, opts)
		return SavedMsg{Path: path, Err: err}
	}
}

// =============================================================================
// TOASTS
// =============================================================================

func (m *Model) notify(kind ToastKind, text string) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toast = &toast{id: id, kind: kind, text: text}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// isSuperseded reports errors that only mean a newer request took over.
func isSuperseded(err error) bool {
	return errors.Is(err, chat.ErrSuperseded) || errors.Is(err, report.ErrSuperseded)
}
