// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true
	m.renderer.SetWidth(m.renderWidth())
	m.input.Width = width - 6
	m.help.Width = width
	m.layout()
	m.refreshChat(true)
	m.refreshReport()
}

// layout sizes the viewports to what header, input and status leave.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	chrome := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderStatusBar())
	if m.showHelp {
		chrome += lipgloss.Height(m.help.View(m.keys))
	}

	chatH := m.height - chrome - lipgloss.Height(m.renderInput())
	if chatH < 1 {
		chatH = 1
	}
	m.chatView.Width, m.chatView.Height = m.width, chatH

	repH := m.height - chrome
	if m.form != nil {
		repH -= lipgloss.Height(m.form.view(m.theme, m.width))
	}
	if repH < 1 {
		repH = 1
	}
	m.repView.Width, m.repView.Height = m.width, repH
}

func (m *Model) activeView() *viewport.Model {
	if m.pane == PaneReport {
		return &m.repView
	}
	return &m.chatView
}

// =============================================================================
// CONTENT
// =============================================================================

// refreshChat re-renders the transcript from the controller's snapshot.
func (m *Model) refreshChat(scrollToEnd bool) {
	msgs := m.chat.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	m.chatView.SetContent(strings.Join(blocks, "\n\n"))
	if scrollToEnd {
		m.chatView.GotoBottom()
	}
}

func (m *Model) renderMessage(msg model.Message) string {
	header := m.theme.RoleLabel(msg.Role)
	if badge := m.theme.MsgTypeBadge(msg.MsgType); badge != "" {
		header += " " + badge
	}
	if !msg.Timestamp.IsZero() {
		header += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	body := msg.Content
	if body != "" && msg.Role != model.RoleUser {
		body = m.renderer.Message(msg)
	} else if body != "" {
		body = util.Wrap(body, m.renderWidth())
	}
	return header + "\n" + m.theme.Bubble(msg.Role).Render(body)
}

// refreshReport re-renders the report pane from the mirrored state.
func (m *Model) refreshReport() {
	st := m.repState
	if st.Report == nil {
		text := st.Placeholder
		if text == "" {
			text = "Fetching the latest report..."
		}
		m.repView.SetContent(m.theme.Placeholder.Render(util.Wrap(text, m.renderWidth())))
		return
	}
	m.repView.SetContent(m.theme.ReportPane.Render(m.renderer.Markdown(st.Markdown)))
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	parts := []string{m.renderHeader()}
	switch {
	case m.pane == PaneReport && m.form != nil:
		parts = append(parts, m.form.view(m.theme, m.width), m.repView.View())
	case m.pane == PaneReport:
		parts = append(parts, m.repView.View())
	default:
		parts = append(parts, m.chatView.View(), m.renderInput())
	}
	parts = append(parts, m.renderStatusBar())
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("mle-tui")
	tabs := make([]string, 0, 2)
	for _, p := range []Pane{PaneChat, PaneReport} {
		style := m.theme.Tab
		if p == m.pane {
			style = m.theme.TabActive
		}
		tabs = append(tabs, style.Render(p.String()))
	}
	sub := m.theme.HeaderSubtitle.Render("project " + m.chat.Project())

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", lipgloss.JoinHorizontal(lipgloss.Center, tabs...))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(sub) - 2
	if gap < 1 {
		return m.theme.Header.Width(m.width).Render(left)
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + sub)
}

func (m *Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

func (m *Model) renderStatusBar() string {
	var left string
	switch {
	case m.toast != nil:
		left = m.theme.Status(string(m.toast.kind), m.toast.text)
	case m.chatLoading:
		left = m.spinner.View() + " " + m.theme.ThinkingText.Render("Agent is responding...")
	case m.repState.Loading:
		left = m.spinner.View() + " " + m.theme.ThinkingText.Render("Generating report...")
	case m.awaiting:
		left = m.spinner.View() + " " + m.theme.ThinkingText.Render("Waiting for the new report...")
	default:
		left = m.theme.ShortcutKey.Render("F1") + " " + m.theme.ShortcutDesc.Render("help")
	}

	right := m.theme.ShortcutDesc.Render(m.cfg.Server.BaseURL)
	avail := m.width - lipgloss.Width(right) - 3
	if avail < 10 {
		return m.theme.StatusBar.Width(m.width).Render(truncate.String(left, uint(max(m.width-2, 0))))
	}
	if lipgloss.Width(left) > avail {
		left = truncate.String(left, uint(avail))
	}
	gap := avail - lipgloss.Width(left)
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap+1) + right)
}
