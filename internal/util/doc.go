// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across mle-tui.
//
// # Key Functions
//
// Display text:
//   - StringWidth, Truncate, PadRight: column-aware sizing (CJK, emoji)
//   - FirstLine: one-line preview of a message
//   - Wrap, Indent: line-mode layout
//
// File operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.FirstLine(msg.Content, 60)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
