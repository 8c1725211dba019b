// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/ui/render"
	"github.com/jeranaias/mle-tui/internal/ui/styles"
)

// =============================================================================
// PANES
// =============================================================================

// Pane identifies the visible pane.
type Pane int

const (
	PaneChat Pane = iota
	PaneReport
)

func (p Pane) String() string {
	if p == PaneReport {
		return "Report"
	}
	return "Chat"
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the whole application.
//
// Controllers own all session and report state. The model only mirrors
// what their events say and re-renders; it never edits messages itself.
type Model struct {
	ctx context.Context

	cfg      *config.Config
	theme    *styles.Theme
	renderer *render.Renderer
	keys     KeyMap

	chat   *chat.Controller
	report *report.Controller

	// Dimensions
	width  int
	height int
	ready  bool

	pane     Pane
	chatView viewport.Model
	repView  viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	showHelp bool

	form *reportForm

	// Mirrors of controller state
	chatLoading bool
	repState    report.State
	awaiting    bool

	toast     *toast
	nextToast int
}

// Deps are the collaborators a Model drives.
type Deps struct {
	Config *config.Config
	Chat   *chat.Controller
	Report *report.Controller
}

// New creates the application model.
func New(ctx context.Context, deps Deps) (*Model, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	renderer, err := render.New(render.Options{
		Style:     cfg.UI.Theme,
		CodeStyle: cfg.UI.CodeStyle,
		Width:     cfg.UI.WordWrap,
		CacheSize: cfg.UI.RenderCacheSize,
	})
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Placeholder = "Message the agent..."
	in.Prompt = "> "
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = styles.BrailleSpinner.Bubble()

	m := &Model{
		ctx:      ctx,
		cfg:      cfg,
		theme:    styles.NewTheme(cfg.UI.Theme),
		renderer: renderer,
		keys:     DefaultKeyMap(),
		chat:     deps.Chat,
		report:   deps.Report,
		input:    in,
		spinner:  sp,
		help:     help.New(),
		chatView: viewport.New(render.DefaultWidth, 20),
		repView:  viewport.New(render.DefaultWidth, 20),
		repState: deps.Report.State(),
	}
	m.input.PromptStyle = m.theme.InputPrompt
	m.spinner.Style = m.theme.Spinner
	return m, nil
}

// Init fetches the latest report and starts the cursor and spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.fetchLatestCmd())
}

// Pane returns the visible pane.
func (m *Model) Pane() Pane {
	return m.pane
}

// applyConfig swaps in UI settings from a reloaded configuration.
func (m *Model) applyConfig(cfg *config.Config) {
	old := m.cfg
	m.cfg = cfg

	if cfg.UI == old.UI {
		return
	}
	renderer, err := render.New(render.Options{
		Style:     cfg.UI.Theme,
		CodeStyle: cfg.UI.CodeStyle,
		Width:     m.renderWidth(),
		CacheSize: cfg.UI.RenderCacheSize,
	})
	if err != nil {
		log.Printf("CONFIG_APPLY_FAILED | err=%v", err)
		return
	}
	m.renderer = renderer
	m.theme = styles.NewTheme(cfg.UI.Theme)
	m.input.PromptStyle = m.theme.InputPrompt
	m.spinner.Style = m.theme.Spinner
	m.refreshChat(false)
	m.refreshReport()
}

// renderWidth is the Markdown wrap width: word_wrap when set, else the
// window width minus the bubble frame.
func (m *Model) renderWidth() int {
	if m.cfg.UI.WordWrap > 0 {
		return m.cfg.UI.WordWrap
	}
	if m.width > 8 {
		return m.width - 4
	}
	return render.DefaultWidth
}
