// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea front end: a chat pane, a report pane and a
// report request form.
//
// The model holds no session or report state of its own. It mirrors the
// events published by chat.Controller and report.Controller, which Run
// forwards into the program with Send, and re-renders from their snapshots.
//
// # Key Types
//
//   - Model: the tea.Model for the whole screen
//   - Deps: configuration and the two controllers
//   - KeyMap: key bindings, also shown by the help view
//
// # Usage
//
//	err := app.Run(ctx, app.Deps{Config: cfg, Chat: chatCtrl, Report: reportCtrl},
//	    app.RunOptions{ConfigPath: path, LogPath: logPath})
package app
