// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/export"
	"github.com/jeranaias/mle-tui/internal/model"
)

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(opts *rootOptions) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Long: `Start a line-mode chat session with the agent.

Replies stream in as they arrive. Ctrl+C cancels the reply in progress;
Ctrl+C at the prompt or Ctrl+D ends the session.

Session commands:
  /help              Show session commands
  /reset             Start over with a fresh session
  /project [NAME]    Show or change the project tag
  /save [FORMAT]     Save the transcript (markdown, json, html)
  /quit              End the session`,
		Example: `  mle-tui chat
  mle-tui chat --project billing
  echo "summarize the open issues" | mle-tui chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.newClient()
			session := newChatSession(opts, opts.newChatController(c, project), opts.stdout)

			var in lineReader
			if IsTTY() {
				history := filepath.Join(os.TempDir(), "mle-tui_chat_history")
				if dir, err := config.ConfigDir(); err == nil {
					history = filepath.Join(dir, "chat_history")
				}
				in = NewChatCLI(history)
			} else {
				in = newScannerReader(os.Stdin)
			}
			defer in.Close()

			stopSignals := session.handleInterrupts()
			defer stopSignals()

			return session.run(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project tag for the session (default chat.project)")
	return cmd
}

// =============================================================================
// INPUT
// =============================================================================

// lineReader is where the session reads user lines from.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner-backed reader with history kept in historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history, owner read/write only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scannerReader reads lines from a pipe. The prompt is not echoed.
type scannerReader struct {
	sc *bufio.Scanner
}

func newScannerReader(r io.Reader) *scannerReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &scannerReader{sc: sc}
}

func (s *scannerReader) ReadInput(string) (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

func (s *scannerReader) Close() {}

// =============================================================================
// SESSION
// =============================================================================

// chatSession prints controller events as they happen.
type chatSession struct {
	opts  *rootOptions
	ctrl  *chat.Controller
	out   io.Writer
	start time.Time

	mu      sync.Mutex
	printed map[string]int
	sending bool
}

func newChatSession(opts *rootOptions, ctrl *chat.Controller, out io.Writer) *chatSession {
	s := &chatSession{
		opts:    opts,
		ctrl:    ctrl,
		out:     out,
		start:   time.Now(),
		printed: make(map[string]int),
	}
	ctrl.Subscribe(s.onEvent)
	return s
}

// onEvent writes the unseen tail of the agent reply.
func (s *chatSession) onEvent(e chat.Event) {
	if e.Type != chat.EventMessageAppended && e.Type != chat.EventMessageUpdated {
		return
	}
	if e.Message.Role != model.RoleAssistant {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done, seen := s.printed[e.Message.ID]
	if !seen {
		label := color.New(color.FgMagenta, color.Bold).Sprint(model.RoleAssistant.DisplayName())
		if e.Message.MsgType != model.MsgTypeNone {
			label += color.HiBlackString(" [%s]", e.Message.MsgType)
		}
		fmt.Fprintf(s.out, "\n%s\n", label)
	}
	if done > len(e.Message.Content) {
		done = len(e.Message.Content)
	}
	fmt.Fprint(s.out, e.Message.Content[done:])
	s.printed[e.Message.ID] = len(e.Message.Content)
}

// handleInterrupts makes Ctrl+C cancel the reply in progress instead of
// killing the process.
func (s *chatSession) handleInterrupts() func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigs:
				s.mu.Lock()
				sending := s.sending
				s.mu.Unlock()
				if sending && sig == os.Interrupt {
					s.ctrl.Cancel()
					continue
				}
				os.Exit(ExitGeneralError)
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (s *chatSession) printWelcome() {
	title := color.New(color.FgCyan, color.Bold).Sprint("mle-tui chat")
	fmt.Fprintf(s.out, "%s  project %s  backend %s\n", title, s.ctrl.Project(), s.opts.cfg.Server.BaseURL)
	fmt.Fprintln(s.out, color.HiBlackString("Type /help for commands, /quit to exit."))
	if seed := s.ctrl.Messages(); len(seed) > 0 && seed[0].Content != "" {
		fmt.Fprintf(s.out, "\n%s\n", seed[0].Content)
	}
}

func (s *chatSession) printSummary() {
	n := s.ctrl.Messages()
	fmt.Fprintf(s.out, "\n%s %d messages in %s\n",
		color.CyanString("Session:"), len(n)-1, time.Since(s.start).Round(time.Second))
}

// run is the read-send loop. It returns nil when the user ends the session.
func (s *chatSession) run(ctx context.Context, in lineReader) error {
	s.printWelcome()
	prompt := color.New(color.FgCyan, color.Bold).Sprint("you> ")

	for {
		input, err := in.ReadInput(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.printSummary()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !s.handleSlashCommand(input) {
				s.printSummary()
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printSummary()
			return nil
		}

		s.send(ctx, input)
	}
}

func (s *chatSession) send(ctx context.Context, text string) {
	s.mu.Lock()
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	_, err := s.ctrl.SendText(ctx, text)
	fmt.Fprintln(s.out)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrSuperseded), errors.Is(err, context.Canceled):
		s.opts.out.warn("Reply cancelled")
	default:
		s.opts.out.fail("%v", err)
		if hint := hintFor(err, s.opts.cfg.Server.BaseURL); hint != "" {
			s.opts.out.hint(hint)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs one session command and reports whether the
// session continues.
func (s *chatSession) handleSlashCommand(input string) bool {
	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/q", "/exit":
		return false

	case "/help", "/h", "/?":
		fmt.Fprintln(s.out, `Commands:
  /reset             Start over with a fresh session
  /project [NAME]    Show or change the project tag
  /save [FORMAT]     Save the transcript (markdown, json, html)
  /quit              End the session`)

	case "/reset", "/clear":
		s.ctrl.Reset()
		s.mu.Lock()
		s.printed = make(map[string]int)
		s.mu.Unlock()
		s.opts.out.info("Session reset")

	case "/project":
		if len(args) == 0 {
			s.opts.out.info("Project: %s", s.ctrl.Project())
			break
		}
		s.ctrl.SetProject(args[0])
		s.opts.out.info("Project set to %s", args[0])

	case "/save":
		format := ""
		if len(args) > 0 {
			format = args[0]
		}
		f, err := export.ParseFormat(format)
		if err != nil {
			s.opts.out.fail("%v", err)
			break
		}
		eopts := export.DefaultOptions()
		eopts.OutputDir = s.opts.cfg.Report.OutputDir
		path, err := export.SaveTranscript(s.ctrl.Messages(), s.ctrl.Project(), f, eopts)
		if err != nil {
			s.opts.out.fail("Save failed: %v", err)
			break
		}
		s.opts.out.success("Saved %s", path)

	default:
		s.opts.out.warn("Unknown command %s (try /help)", name)
	}
	return true
}
