// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli builds the mle-tui command tree.
//
// Running mle-tui with no subcommand starts the full-screen interface. The
// subcommands cover scripted and line-mode use of the same backend.
//
// # Commands
//
//   - chat: line-mode chat with streamed replies and input history
//   - ask: one message, the complete reply printed as Markdown or JSON
//   - report latest|generate|save: report access without the TUI
//   - config show|path|init|get|set: inspect and edit the config file
//   - version: build information
//
// # Exit Codes
//
// Execute maps failures to stable exit codes (see ExitCodeFor) so scripts
// can tell a missing report from an unreachable backend. Commands given
// --json print a JSONResponse on stdout for both success and failure.
//
// # Usage
//
//	func main() {
//		os.Exit(cli.Execute())
//	}
package cli
