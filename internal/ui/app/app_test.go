// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/client"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeBackend struct {
	reply string
	err   error
}

func (f *fakeBackend) Chat(ctx context.Context, project, message string) (*client.ChatStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.ChatStream{
		Body:        io.NopCloser(strings.NewReader(f.reply)),
		ContentType: "text/plain; charset=utf-8",
		Status:      200,
	}, nil
}

type fakeSource struct {
	latest   *report.Data
	generate *report.GenerateResponse
	requests []report.Request
}

func (f *fakeSource) LatestReport(ctx context.Context) (*report.Data, error) {
	if f.latest == nil {
		return nil, report.ErrNoReport
	}
	return f.latest, nil
}

func (f *fakeSource) GenerateReport(ctx context.Context, req report.Request) (*report.GenerateResponse, error) {
	f.requests = append(f.requests, req)
	return f.generate, nil
}

// harness collects controller events the way Run forwards them.
type harness struct {
	m      *Model
	source *fakeSource

	mu     sync.Mutex
	queued []tea.Msg
}

func newHarness(t *testing.T, backend *fakeBackend, source *fakeSource) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.UI.Theme = "notty"
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.RefreshAfterSecs = 0

	chatCtrl := chat.NewController(backend, &chat.Options{Project: "demo", Greeting: "Welcome to demo"})
	repCtrl := report.NewController(source, nil)

	m, err := New(context.Background(), Deps{Config: cfg, Chat: chatCtrl, Report: repCtrl})
	require.NoError(t, err)

	h := &harness{m: m, source: source}
	chatCtrl.Subscribe(func(e chat.Event) { h.enqueue(ChatEventMsg{Event: e}) })
	repCtrl.Subscribe(func(e report.Event) { h.enqueue(ReportEventMsg{Event: e}) })

	h.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) enqueue(msg tea.Msg) {
	h.mu.Lock()
	h.queued = append(h.queued, msg)
	h.mu.Unlock()
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

// run executes cmd, then delivers its result and every queued event.
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	h.mu.Lock()
	queued := h.queued
	h.queued = nil
	h.mu.Unlock()
	for _, q := range queued {
		h.update(q)
	}
	if msg != nil {
		h.update(msg)
	}
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	return h.update(tea.KeyMsg{Type: k})
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// CHAT PANE
// =============================================================================

func TestViewShowsTabsAndSeedMessage(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	view := h.m.View()
	assert.Contains(t, view, "Chat")
	assert.Contains(t, view, "Report")
	assert.Contains(t, view, "project demo")
	assert.Contains(t, view, "Welcome to demo")
}

func TestViewBeforeWindowSize(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Theme = "notty"
	m, err := New(context.Background(), Deps{
		Config: cfg,
		Chat:   chat.NewController(&fakeBackend{}, nil),
		Report: report.NewController(&fakeSource{}, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "Starting...", m.View())
}

func TestSendShowsUserMessageAndReply(t *testing.T) {
	h := newHarness(t, &fakeBackend{reply: "Here is the plan"}, &fakeSource{})

	h.typeText("build a parser")
	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Empty(t, h.m.input.Value(), "input is cleared on submit")

	h.run(cmd)

	view := h.m.View()
	assert.Contains(t, view, "You")
	assert.Contains(t, view, "build a parser")
	assert.Contains(t, view, "Agent")
	assert.Contains(t, view, "Here is the plan")
	assert.False(t, h.m.chatLoading)
}

func TestSendBlankInputDoesNothing(t *testing.T) {
	h := newHarness(t, &fakeBackend{reply: "x"}, &fakeSource{})

	h.typeText("   ")
	assert.Nil(t, h.key(tea.KeyEnter))
	assert.Len(t, h.m.chat.Messages(), 1)
}

func TestSendFailureShowsToast(t *testing.T) {
	h := newHarness(t, &fakeBackend{err: errors.New("connection refused")}, &fakeSource{})

	h.typeText("hi")
	h.run(h.key(tea.KeyEnter))

	require.NotNil(t, h.m.toast)
	assert.Equal(t, ToastError, h.m.toast.kind)
	assert.Contains(t, h.m.View(), "connection refused")
	assert.False(t, h.m.chatLoading)
}

func TestResetRestoresSeed(t *testing.T) {
	h := newHarness(t, &fakeBackend{reply: "ok"}, &fakeSource{})

	h.typeText("hi")
	h.run(h.key(tea.KeyEnter))
	require.Len(t, h.m.chat.Messages(), 3)

	h.run(h.key(tea.KeyCtrlR))
	assert.Len(t, h.m.chat.Messages(), 1)
	assert.Equal(t, "Session reset", h.m.toast.text)
}

func TestSaveTranscript(t *testing.T) {
	h := newHarness(t, &fakeBackend{reply: "ok"}, &fakeSource{})

	cmd := h.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(SavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.FileExists(t, saved.Path)

	h.update(saved)
	assert.Equal(t, ToastSuccess, h.m.toast.kind)
}

// =============================================================================
// REPORT PANE
// =============================================================================

func TestSwitchPane(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	assert.Equal(t, PaneChat, h.m.Pane())
	h.key(tea.KeyTab)
	assert.Equal(t, PaneReport, h.m.Pane())
	h.key(tea.KeyTab)
	assert.Equal(t, PaneChat, h.m.Pane())
}

func TestReportPlaceholderWhenNoReport(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	h.run(h.m.fetchLatestCmd())
	h.key(tea.KeyTab)

	assert.True(t, h.m.repState.NotFound)
	assert.Contains(t, h.m.View(), "No report has been generated yet")
}

func TestReportShownAfterFetch(t *testing.T) {
	data := report.Empty()
	data.ProjectOKR = "Ship the parser"
	h := newHarness(t, &fakeBackend{}, &fakeSource{latest: data})

	h.run(h.m.fetchLatestCmd())
	h.key(tea.KeyTab)

	view := h.m.View()
	assert.Contains(t, view, "Project Report")
	assert.Contains(t, view, "Ship the parser")
}

func TestFormRejectsIncompleteRequest(t *testing.T) {
	source := &fakeSource{}
	h := newHarness(t, &fakeBackend{}, source)

	h.key(tea.KeyTab)
	h.key(tea.KeyCtrlN)
	require.NotNil(t, h.m.form)

	assert.Nil(t, h.key(tea.KeyEnter))
	require.NotNil(t, h.m.form, "form stays open on validation errors")
	assert.Error(t, h.m.form.err)
	assert.Empty(t, source.requests)

	h.key(tea.KeyEsc)
	assert.Nil(t, h.m.form)
}

func TestFormGeneratesReport(t *testing.T) {
	result := report.Empty()
	result.ProjectOKR = "Fresh OKR"
	source := &fakeSource{generate: &report.GenerateResponse{Result: result}}
	h := newHarness(t, &fakeBackend{}, source)

	h.key(tea.KeyTab)
	h.key(tea.KeyCtrlN)
	h.typeText("acme/app")
	h.key(tea.KeyTab)
	h.typeText("octo")
	h.key(tea.KeyTab)
	h.typeText("secret")

	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Nil(t, h.m.form)
	h.run(cmd)

	require.Len(t, source.requests, 1)
	req := source.requests[0]
	assert.Equal(t, "acme/app", req.Repo)
	assert.Equal(t, "octo", req.Username)
	assert.Equal(t, "secret", req.Token)
	assert.Equal(t, report.RecurrenceWeekly, req.RecurringReports)

	assert.Contains(t, h.m.View(), "Fresh OKR")
	assert.False(t, h.m.repState.Loading)
}

func TestAcceptedGenerateStartsAwait(t *testing.T) {
	source := &fakeSource{generate: &report.GenerateResponse{}}
	h := newHarness(t, &fakeBackend{}, source)

	cmd := h.m.generateCmd(report.NewRequest("acme/app", "octo", "secret"))
	msg := cmd()

	h.mu.Lock()
	queued := h.queued
	h.queued = nil
	h.mu.Unlock()

	var awaitCmd tea.Cmd
	for _, q := range queued {
		if c := h.update(q); c != nil {
			if ev, ok := q.(ReportEventMsg); ok && ev.Event.Type == report.EventGenerateAccepted {
				awaitCmd = c
			}
		}
	}
	h.update(msg)

	assert.True(t, h.m.awaiting)
	assert.NotNil(t, awaitCmd)
	assert.Contains(t, h.m.View(), "accepted")
}

func TestAwaitDone(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})
	h.m.awaiting = true

	h.update(AwaitDoneMsg{Changed: true})
	assert.False(t, h.m.awaiting)
	assert.Equal(t, ToastSuccess, h.m.toast.kind)

	h.update(AwaitDoneMsg{})
	assert.Equal(t, ToastInfo, h.m.toast.kind)

	h.update(AwaitDoneMsg{Err: context.Canceled})
	assert.Equal(t, ToastWarning, h.m.toast.kind)
}

func TestSaveReportWithoutReport(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	h.key(tea.KeyTab)
	h.run(h.key(tea.KeyCtrlS))

	require.NotNil(t, h.m.toast)
	assert.Equal(t, ToastError, h.m.toast.kind)
	assert.Contains(t, h.m.toast.text, "no report")
}

// =============================================================================
// TOASTS AND CONFIG
// =============================================================================

func TestToastExpires(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	h.m.notify(ToastInfo, "first")
	first := h.m.toast.id
	h.m.notify(ToastInfo, "second")

	h.update(toastExpiredMsg{id: first})
	require.NotNil(t, h.m.toast, "an older expiry must not clear a newer toast")
	assert.Equal(t, "second", h.m.toast.text)

	h.update(toastExpiredMsg{id: h.m.toast.id})
	assert.Nil(t, h.m.toast)
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t, &fakeBackend{}, &fakeSource{})

	cfg := h.m.cfg.Clone()
	cfg.UI.CodeStyle = "dracula"
	oldRenderer := h.m.renderer

	h.update(ConfigReloadedMsg{Config: cfg})
	assert.Equal(t, "dracula", h.m.cfg.UI.CodeStyle)
	assert.NotSame(t, oldRenderer, h.m.renderer)

	h.update(ConfigReloadedMsg{Err: errors.New("bad toml")})
	assert.Equal(t, ToastWarning, h.m.toast.kind)
	assert.Equal(t, "dracula", h.m.cfg.UI.CodeStyle)
}
