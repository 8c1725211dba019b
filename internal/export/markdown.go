// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports reports and transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if e.options.IncludeMetadata {
		e.writeFrontmatter(&sb, doc)
	}

	switch doc.Kind {
	case KindReport:
		sb.WriteString(report.ToMarkdown(doc.Report))
	case KindTranscript:
		e.writeTranscript(&sb, doc)
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

func (e *MarkdownExporter) writeFrontmatter(sb *strings.Builder, doc *Document) {
	sb.WriteString("---\n")
	fmt.Fprintf(sb, "title: %s\n", escapeYAML(doc.Title))
	fmt.Fprintf(sb, "kind: %s\n", doc.Kind)
	if doc.Project != "" {
		fmt.Fprintf(sb, "project: %s\n", escapeYAML(doc.Project))
	}
	if doc.Kind == KindTranscript {
		fmt.Fprintf(sb, "messages: %d\n", len(doc.Messages))
	}
	fmt.Fprintf(sb, "date: %s\n", doc.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
	sb.WriteString("generator: mle-tui\n")
	sb.WriteString("---\n\n")
}

func (e *MarkdownExporter) writeTranscript(sb *strings.Builder, doc *Document) {
	fmt.Fprintf(sb, "# %s\n\n", escapeMarkdown(doc.Title))

	for i, msg := range doc.Messages {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(e.formatRoleLabel(msg))
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			fmt.Fprintf(sb, " <sub>%s</sub>", formatShortTimestamp(msg.Timestamp))
		}
		sb.WriteString("\n\n")
		sb.WriteString(e.formatMessageContent(msg))
		sb.WriteString("\n")
	}
}

// formatRoleLabel returns a heading for the message author.
func (e *MarkdownExporter) formatRoleLabel(msg model.Message) string {
	label := "### " + msg.Role.DisplayName()
	if msg.MsgType != model.MsgTypeNone {
		label += fmt.Sprintf(" (%s)", msg.MsgType)
	}
	return label
}

// formatMessageContent fences code messages and passes the rest through.
func (e *MarkdownExporter) formatMessageContent(msg model.Message) string {
	content := strings.TrimRight(msg.Content, "\n")
	if msg.MsgType == model.MsgTypeCode && !strings.HasPrefix(strings.TrimSpace(content), "```") {
		return "```\n" + content + "\n```\n"
	}
	return content + "\n"
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break formatting in headings.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", `\#`,
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
	)
	return r.Replace(s)
}

// escapeYAML quotes a scalar when it contains YAML-significant characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
		return `"` + r.Replace(s) + `"`
	}
	return s
}
