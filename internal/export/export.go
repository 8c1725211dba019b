// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/util"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Kind says what a Document holds.
type Kind string

const (
	KindReport     Kind = "report"
	KindTranscript Kind = "transcript"
)

// Document is the unit of export: either a report or a chat transcript.
type Document struct {
	Kind      Kind
	Title     string
	Project   string
	CreatedAt time.Time

	Report   *report.Data
	Messages []model.Message
}

// NewReportDocument wraps a report for export.
func NewReportDocument(data *report.Data, title string) *Document {
	if title == "" {
		title = "Project Report"
	}
	return &Document{Kind: KindReport, Title: title, CreatedAt: time.Now(), Report: data}
}

// NewTranscriptDocument wraps a chat session for export.
func NewTranscriptDocument(msgs []model.Message, project string) *Document {
	return &Document{
		Kind:      KindTranscript,
		Title:     "Chat " + project,
		Project:   project,
		CreatedAt: time.Now(),
		Messages:  msgs,
	}
}

// validate checks that the document has content for its kind.
func (d *Document) validate() error {
	if d == nil {
		return errors.New("document is nil")
	}
	switch d.Kind {
	case KindReport:
		if d.Report == nil {
			return errors.New("no report to export")
		}
	case KindTranscript:
		if len(d.Messages) == 0 {
			return errors.New("transcript has no messages")
		}
	default:
		return fmt.Errorf("unknown document kind %q", d.Kind)
	}
	return nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a document into one file format.
type Exporter interface {
	// Export converts a document to the target format and returns the content.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown, json or html)", s)
	}
}

// NewExporter returns the exporter for format.
func NewExporter(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written.
	// Default: current working directory
	OutputDir string

	// IncludeMetadata adds a metadata header (kind, project, export time).
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times to transcripts.
	IncludeTimestamps bool

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports doc with exporter into opts.OutputDir and returns the
// path written.
func ExportToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := doc.validate(); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s%s",
		doc.Kind,
		sanitizeFilename(doc.Title),
		opts.now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)

	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// SaveReport writes data in format and returns the path.
func SaveReport(data *report.Data, format Format, opts *Options) (string, error) {
	exporter, err := NewExporter(format, opts)
	if err != nil {
		return "", err
	}
	return ExportToFile(NewReportDocument(data, ""), exporter, opts)
}

// SaveTranscript writes a chat session in format and returns the path.
func SaveTranscript(msgs []model.Message, project string, format Format, opts *Options) (string, error) {
	exporter, err := NewExporter(format, opts)
	if err != nil {
		return "", err
	}
	return ExportToFile(NewTranscriptDocument(msgs, project), exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "untitled"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
