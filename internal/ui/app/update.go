// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/report"
)

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// =========================================================================
	// CONTROLLER EVENTS
	// =========================================================================

	case ChatEventMsg:
		return m, m.handleChatEvent(msg.Event)

	case ReportEventMsg:
		return m, m.handleReportEvent(msg.Event)

	// =========================================================================
	// COMMAND RESULTS
	// =========================================================================

	case SendDoneMsg:
		// Failures were already published as EventSendFailed.
		if isSuperseded(msg.Err) {
			log.Printf("TUI_SEND | status=superseded")
		}
		return m, nil

	case FetchDoneMsg:
		return m, nil

	case GenerateDoneMsg:
		var verr report.ValidateErrors
		if errors.As(msg.Err, &verr) {
			return m, m.notify(ToastError, verr.Error())
		}
		if msg.Outcome == report.OutcomeReplaced {
			return m, m.notify(ToastSuccess, "Report updated")
		}
		return m, nil

	case AwaitDoneMsg:
		m.awaiting = false
		switch {
		case msg.Err != nil:
			return m, m.notify(ToastWarning, "Stopped waiting for report: "+msg.Err.Error())
		case msg.Changed:
			return m, m.notify(ToastSuccess, "New report available")
		default:
			return m, m.notify(ToastInfo, "Report still pending; press C-r to refresh later")
		}

	case SavedMsg:
		if msg.Err != nil {
			return m, m.notify(ToastError, "Save failed: "+msg.Err.Error())
		}
		return m, m.notify(ToastSuccess, "Saved "+msg.Path)

	case ConfigReloadedMsg:
		if msg.Err != nil {
			return m, m.notify(ToastWarning, "Config not reloaded: "+msg.Err.Error())
		}
		m.applyConfig(msg.Config)
		return m, m.notify(ToastInfo, "Config reloaded")

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil
	}

	// Anything else (cursor blink) goes to the focused input.
	if m.pane == PaneChat && m.form == nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.chat.Cancel()
		m.report.Cancel()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
		return nil
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.SwitchPane):
		m.switchPane()
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.activeView().ViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.activeView().ViewDown()
		return nil
	}

	if m.pane == PaneReport {
		return m.handleReportKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleChatKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return nil
		}
		m.input.Reset()
		return m.sendCmd(text)

	case key.Matches(msg, m.keys.Cancel):
		if m.chat.Phase() != chat.PhaseIdle {
			m.chat.Cancel()
			return m.notify(ToastInfo, "Response cancelled")
		}
		return nil

	case key.Matches(msg, m.keys.Reset):
		m.chat.Reset()
		return m.notify(ToastInfo, "Session reset")

	case key.Matches(msg, m.keys.Save):
		return m.saveTranscriptCmd()

	case key.Matches(msg, m.keys.NewReport):
		m.switchPane()
		return m.openForm()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleReportKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NewReport):
		return m.openForm()
	case key.Matches(msg, m.keys.Reset):
		return m.fetchLatestCmd()
	case key.Matches(msg, m.keys.Save):
		return m.saveReportCmd()
	case key.Matches(msg, m.keys.Cancel):
		if m.repState.Loading {
			m.report.Cancel()
			return m.notify(ToastInfo, "Report request cancelled")
		}
		return nil
	}

	var cmd tea.Cmd
	m.repView, cmd = m.repView.Update(msg)
	return cmd
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form = nil
		m.layout()
		return nil
	case key.Matches(msg, m.keys.Submit):
		req, ok := m.form.submit()
		if !ok {
			return nil
		}
		m.form = nil
		m.layout()
		return m.generateCmd(req)
	case key.Matches(msg, m.keys.NextField):
		m.form.next()
		return nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.prev()
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) openForm() tea.Cmd {
	m.form = newReportForm(m.cfg.Report.Request())
	m.layout()
	return nil
}

func (m *Model) switchPane() {
	if m.pane == PaneChat {
		m.pane = PaneReport
		m.input.Blur()
	} else {
		m.pane = PaneChat
		m.input.Focus()
	}
}

// =============================================================================
// EVENTS
// =============================================================================

func (m *Model) handleChatEvent(e chat.Event) tea.Cmd {
	switch e.Type {
	case chat.EventLoadingChanged:
		m.chatLoading = e.Loading
		return nil
	case chat.EventSendFailed:
		m.chatLoading = false
		log.Printf("TUI_SEND_FAILED | err=%v", e.Err)
		return m.notify(ToastError, fmt.Sprintf("Send failed: %v", e.Err))
	}
	m.refreshChat(e.ScrollToEnd())
	return nil
}

func (m *Model) handleReportEvent(e report.Event) tea.Cmd {
	m.repState = e.State
	m.refreshReport()

	switch e.Type {
	case report.EventReportFailed:
		return m.notify(ToastError, e.Err.Error())
	case report.EventGenerateAccepted:
		if m.awaiting {
			return m.notify(ToastInfo, "Report job accepted")
		}
		m.awaiting = true
		return tea.Batch(m.notify(ToastInfo, "Report job accepted; waiting for the new report"), m.awaitCmd())
	}
	return nil
}
