// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mle-tui/internal/client"
)

// askResult is the data printed by 'ask --json'.
type askResult struct {
	Project string `json:"project"`
	Message string `json:"message"`
	Reply   string `json:"reply"`
}

// newAskCmd sends one message and prints the whole reply once it is complete.
func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		project    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Send one message and print the reply",
		Example: `  mle-tui ask "what changed in the billing service this week?"
  mle-tui ask --json --project billing "list open risks" | jq -r .data.reply`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				project = opts.cfg.Chat.Project
			}
			message := strings.Join(args, " ")

			fail := func(err error) error {
				if jsonOutput {
					return &jsonModeError{command: "ask", err: err}
				}
				return wrapCommandError("ask", "send", err)
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			s, err := opts.newClient().Chat(ctx, project, message)
			if err != nil {
				return fail(err)
			}
			defer s.Close()

			reply, err := s.Decoder().ReadAll(ctx)
			if err != nil {
				return fail(err)
			}
			if reply == "" {
				return fail(client.ErrEmptyBody)
			}

			if jsonOutput {
				return NewJSONResponse("ask", askResult{Project: project, Message: message, Reply: reply}).Write(opts.stdout)
			}
			fmt.Fprint(opts.stdout, renderMarkdown(reply, opts.cfg.UI.Theme))
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project tag for the message (default chat.project)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the reply as JSON")
	return cmd
}
