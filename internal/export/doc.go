// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes project reports and chat transcripts to files.
//
// # Key Types
//
//   - Document: a report or a transcript plus title and project
//   - Exporter: converts a Document to one format
//   - Options: output directory and metadata switches
//
// # Supported Formats
//
//   - Markdown: the report's Markdown rendering, or a transcript with role headings
//   - JSON: machine-readable, bare or wrapped in a metadata envelope
//   - HTML: the Markdown output rendered to a standalone page
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OutputDir = cfg.Report.OutputDir
//	path, err := export.SaveReport(data, export.FormatMarkdown, opts)
//
//	path, err = export.SaveTranscript(ctrl.Messages(), ctrl.Project(), export.FormatJSON, opts)
package export
