// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders the Markdown export to a standalone HTML page.
type HTMLExporter struct {
	options  *Options
	markdown *MarkdownExporter
	md       goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	body := *opts
	body.IncludeMetadata = false
	return &HTMLExporter{
		options:  opts,
		markdown: NewMarkdownExporter(&body),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="generator" content="mle-tui">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; color: #222; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
code { font-family: "SFMono-Regular", Consolas, monospace; }
.meta { color: #666; font-size: 0.85rem; }
</style>
</head>
<body>
{{if .Meta}}<p class="meta">{{.Kind}}{{if .Project}} &middot; {{.Project}}{{end}} &middot; exported {{.Exported}}</p>
{{end}}{{.Body}}
</body>
</html>
`))

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	src, err := e.markdown.Export(doc)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := e.md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err = htmlPage.Execute(&out, map[string]any{
		"Title":    doc.Title,
		"Kind":     doc.Kind,
		"Project":  doc.Project,
		"Meta":     e.options.IncludeMetadata,
		"Exported": e.options.now().Format(time.RFC3339),
		"Body":     template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}
