// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
)

// RunOptions configures Run.
type RunOptions struct {
	// ConfigPath is watched for changes when set.
	ConfigPath string

	// LogPath receives the log while the TUI owns the terminal.
	LogPath string

	// ProgramOptions are appended to the defaults (alt screen, mouse).
	ProgramOptions []tea.ProgramOption
}

// Run starts the TUI and blocks until it exits.
//
// Controller events are forwarded into the program with Send, so the model
// only ever changes on the Bubble Tea goroutine.
func Run(ctx context.Context, deps Deps, opts RunOptions) error {
	if opts.LogPath != "" {
		f, err := tea.LogToFile(opts.LogPath, "mle-tui")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := New(ctx, deps)
	if err != nil {
		return err
	}

	programOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)
	p := tea.NewProgram(m, programOpts...)

	unsubChat := deps.Chat.Subscribe(func(e chat.Event) {
		p.Send(ChatEventMsg{Event: e})
	})
	defer unsubChat()
	unsubReport := deps.Report.Subscribe(func(e report.Event) {
		p.Send(ReportEventMsg{Event: e})
	})
	defer unsubReport()

	if opts.ConfigPath != "" {
		err := config.Watch(ctx, opts.ConfigPath, func(cfg *config.Config, err error) {
			p.Send(ConfigReloadedMsg{Config: cfg, Err: err})
		})
		if err != nil {
			log.Printf("CONFIG_WATCH_FAILED | path=%s err=%v", opts.ConfigPath, err)
		}
	}

	log.Printf("TUI_START | base_url=%s project=%s", m.cfg.Server.BaseURL, deps.Chat.Project())
	_, err = p.Run()
	log.Printf("TUI_EXIT | err=%v", err)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
