// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mle-tui/internal/chat"
	"github.com/jeranaias/mle-tui/internal/client"
	"github.com/jeranaias/mle-tui/internal/config"
	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// rootOptions holds the persistent flags and what they resolve to.
type rootOptions struct {
	configPath string
	baseURL    string
	verbose    bool

	cfg *config.Config
	out *printer

	stdout io.Writer
	stderr io.Writer
}

// loadConfig reads the configuration and applies flag overrides.
func (o *rootOptions) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.baseURL != "" {
		cfg.Server.BaseURL = o.baseURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	config.SetGlobal(cfg)
	o.cfg = cfg
	return nil
}

func (o *rootOptions) resolvedConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPath()
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

func (o *rootOptions) newClient() *client.Client {
	return client.NewClientWithConfig(&client.ClientConfig{
		BaseURL:   o.cfg.Server.BaseURL,
		Timeout:   o.cfg.Server.Timeout(),
		UserAgent: "mle-tui/" + Version,
	})
}

func (o *rootOptions) newChatController(c *client.Client, project string) *chat.Controller {
	if project == "" {
		project = o.cfg.Chat.Project
	}
	return chat.NewController(c, &chat.Options{
		Project:  project,
		Greeting: o.cfg.Chat.Greeting,
	})
}

func (o *rootOptions) newReportController(c *client.Client) *report.Controller {
	return report.NewController(c, &report.Options{
		RefreshAfter: o.cfg.Report.RefreshAfter(),
		PollInterval: o.cfg.Report.PollInterval(),
		MaxPolls:     o.cfg.Report.MaxPolls,
	})
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root, _ := newRootCmd(stdout, stderr)
	return root
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "mle-tui",
		Short: "Terminal client for the MLE agent backend",
		Long: `mle-tui talks to the MLE agent backend.

Usage modes:
  mle-tui              Start the full-screen chat and report interface
  mle-tui chat         Line-mode chat session
  mle-tui ask MESSAGE  One-shot question, reply printed when complete
  mle-tui report ...   Fetch, generate or save project reports

Configuration lives in ~/.mle-tui/config.toml; see 'mle-tui config path'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = newPrinter(stdout, stderr)
			configureLogging(opts.verbose, stderr)
			if cmd.Annotations["skipConfig"] == "true" {
				return nil
			}
			return opts.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.mle-tui/config.toml)")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "agent backend URL (overrides server.base_url)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newChatCmd(opts),
		newAskCmd(opts),
		newReportCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return root, opts
}

// configureLogging sends the log to stderr with --verbose and discards it
// otherwise. The TUI redirects it to a file on its own.
func configureLogging(verbose bool, stderr io.Writer) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if verbose {
		log.SetOutput(stderr)
		return
	}
	log.SetOutput(io.Discard)
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	if err := RequiresTTY("the interactive interface"); err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	c := opts.newClient()
	deps := app.Deps{
		Config: opts.cfg,
		Chat:   opts.newChatController(c, ""),
		Report: opts.newReportController(c),
	}

	runOpts := app.RunOptions{}
	if path, err := opts.resolvedConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			runOpts.ConfigPath = path
		}
	}
	if !opts.verbose {
		if logPath, err := config.LogPath(); err == nil {
			runOpts.LogPath = logPath
		}
	}
	return app.Run(ctx, deps, runOpts)
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root, opts := newRootCmd(os.Stdout, os.Stderr)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitSuccess
	}

	var jsonCmd *jsonModeError
	if errors.As(err, &jsonCmd) {
		_ = NewJSONErrorResponse(jsonCmd.command, jsonCmd.err).Write(os.Stdout)
		return ExitCodeFor(jsonCmd.err)
	}

	p := newPrinter(os.Stdout, os.Stderr)
	p.fail("%v", err)
	baseURL := client.DefaultBaseURL
	if opts.cfg != nil {
		baseURL = opts.cfg.Server.BaseURL
	}
	if hint := hintFor(err, baseURL); hint != "" {
		p.hint(hint)
	}
	return ExitCodeFor(err)
}

// jsonModeError carries a failure that must be printed as a JSONResponse.
type jsonModeError struct {
	command string
	err     error
}

func (e *jsonModeError) Error() string { return fmt.Sprintf("%s: %v", e.command, e.err) }
func (e *jsonModeError) Unwrap() error { return e.err }
