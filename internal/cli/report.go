// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mle-tui/internal/export"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// REPORT COMMAND
// =============================================================================

func newReportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch, generate or save project reports",
		Long: `Work with the project report kept by the agent backend.

Subcommands:
  latest     Print the most recent report
  generate   Request a new report for a repository
  save       Write the most recent report to a file`,
		Args: cobra.NoArgs,
	}
	cmd.AddCommand(
		newReportLatestCmd(opts),
		newReportGenerateCmd(opts),
		newReportSaveCmd(opts),
	)
	return cmd
}

// interruptible returns a context cancelled on Ctrl+C or SIGTERM.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// fetchLatest loads the most recent report, mapping the not-found state to
// report.ErrNoReport.
func fetchLatest(ctx context.Context, ctrl *report.Controller) (report.State, error) {
	if err := ctrl.FetchLatest(ctx); err != nil {
		return report.State{}, err
	}
	st := ctrl.State()
	if st.NotFound || st.Report == nil {
		return st, report.ErrNoReport
	}
	return st, nil
}

// =============================================================================
// LATEST
// =============================================================================

func newReportLatestCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recent report",
		Example: `  mle-tui report latest
  mle-tui report latest --json | jq .data.summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()

			ctrl := opts.newReportController(opts.newClient())
			st, err := fetchLatest(ctx, ctrl)
			if err != nil {
				if jsonOutput {
					return &jsonModeError{command: "report latest", err: err}
				}
				return wrapCommandError("report", "latest", err)
			}

			if jsonOutput {
				return NewJSONResponse("report latest", st.Report).Write(opts.stdout)
			}
			fmt.Fprint(opts.stdout, renderMarkdown(st.Markdown, opts.cfg.UI.Theme))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}

// =============================================================================
// GENERATE
// =============================================================================

// generateResult is the data printed by 'report generate --json'.
type generateResult struct {
	Outcome string       `json:"outcome"`
	Updated bool         `json:"updated"`
	Report  *report.Data `json:"report,omitempty"`
}

func newReportGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		repo, username, token string
		okr, dateRange        string
		recurring             string
		sources               []string
		wait, jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Request a new report for a repository",
		Long: `Request a new report for a repository.

Flags left unset fall back to the [report] section of the config file.
The backend either returns the report directly or accepts the job and
produces it later; with --wait the command polls until it appears.`,
		Example: `  mle-tui report generate --repo acme/api --username jdoe --token $GH_TOKEN
  mle-tui report generate --repo acme/api --date-range lastWeek --recurring never --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := opts.cfg.Report.Request()
			flags := cmd.Flags()
			if flags.Changed("repo") {
				req.Repo = repo
			}
			if flags.Changed("username") {
				req.Username = username
			}
			if flags.Changed("token") {
				req.Token = token
			}
			if flags.Changed("okr") {
				req.OKR = okr
			}
			if flags.Changed("date-range") {
				req.DateRange = report.DateRange(dateRange)
			}
			if flags.Changed("recurring") {
				req.RecurringReports = report.Recurrence(recurring)
			}
			if flags.Changed("source") {
				req.AdditionalSources = sources
			}

			fail := func(err error) error {
				if jsonOutput {
					return &jsonModeError{command: "report generate", err: err}
				}
				return wrapCommandError("report", "generate", err)
			}

			if err := req.Validate(); err != nil {
				return fail(err)
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			ctrl := opts.newReportController(opts.newClient())
			// The wait compares against the report that was current before the request.
			if wait {
				if err := ctrl.FetchLatest(ctx); err != nil {
					return fail(err)
				}
			}

			outcome, err := ctrl.Generate(ctx, req)
			if err != nil {
				return fail(err)
			}

			result := generateResult{Outcome: outcome.String()}
			switch outcome {
			case report.OutcomeReplaced:
				result.Updated = true
				if !jsonOutput {
					opts.out.success("Report generated for %s", req.Repo)
				}
			case report.OutcomeAccepted:
				if !jsonOutput {
					opts.out.info("Report request accepted for %s", req.Repo)
				}
				if wait {
					if !jsonOutput {
						opts.out.info("Waiting for the new report...")
					}
					updated, err := ctrl.AwaitNewReport(ctx)
					if err != nil {
						return fail(err)
					}
					result.Updated = updated
					if !updated && !jsonOutput {
						opts.out.warn("No new report yet; check again with: mle-tui report latest")
					}
				}
			}

			st := ctrl.State()
			if result.Updated {
				result.Report = st.Report
			}

			if jsonOutput {
				return NewJSONResponse("report generate", result).Write(opts.stdout)
			}
			if result.Updated {
				fmt.Fprint(opts.stdout, renderMarkdown(st.Markdown, opts.cfg.UI.Theme))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&repo, "repo", "", "repository to report on (OWNER/NAME)")
	f.StringVar(&username, "username", "", "account the report is generated for")
	f.StringVar(&token, "token", "", "access token for the repository host")
	f.StringVar(&okr, "okr", "", "objective and key results to measure against")
	f.StringVar(&dateRange, "date-range", "", "activity window: lastDay, lastWeek, lastMonth")
	f.StringVar(&recurring, "recurring", "", "schedule: daily, weekly, monthly, never (default weekly)")
	f.StringSliceVar(&sources, "source", nil, "additional source to include (repeatable)")
	f.BoolVar(&wait, "wait", false, "poll until the new report is available")
	f.BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

// =============================================================================
// SAVE
// =============================================================================

func newReportSaveCmd(opts *rootOptions) *cobra.Command {
	var dir, format, title string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write the most recent report to a file",
		Example: `  mle-tui report save
  mle-tui report save --format html --dir ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return &UsageError{Message: err.Error()}
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			ctrl := opts.newReportController(opts.newClient())
			st, err := fetchLatest(ctx, ctrl)
			if err != nil {
				return wrapCommandError("report", "save", err)
			}

			eopts := export.DefaultOptions()
			eopts.OutputDir = opts.cfg.Report.OutputDir
			if dir != "" {
				eopts.OutputDir = dir
			}

			exporter, err := export.NewExporter(f, eopts)
			if err != nil {
				return wrapCommandError("report", "save", err)
			}
			path, err := export.ExportToFile(export.NewReportDocument(st.Report, title), exporter, eopts)
			if err != nil {
				return wrapCommandError("report", "save", err)
			}
			opts.out.success("Saved %s", path)
			fmt.Fprintln(opts.stdout, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default report.output_dir)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "file format: markdown, json, html")
	cmd.Flags().StringVar(&title, "title", "", "document title (default \"Project Report\")")
	return cmd
}
