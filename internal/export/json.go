// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/report"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports documents as indented JSON.
// A report exported without metadata is the bare report object, the same
// shape the backend serves from /latest_report.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonEnvelope struct {
	Kind      Kind            `json:"kind"`
	Title     string          `json:"title"`
	Project   string          `json:"project,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Exported  time.Time       `json:"exported_at"`
	Generator string          `json:"generator"`
	Report    *report.Data    `json:"report,omitempty"`
	Messages  []model.Message `json:"messages,omitempty"`
}

// Export converts a document to JSON.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	if !e.options.IncludeMetadata {
		if doc.Kind == KindReport {
			return json.MarshalIndent(doc.Report, "", "  ")
		}
		return json.MarshalIndent(doc.Messages, "", "  ")
	}

	return json.MarshalIndent(jsonEnvelope{
		Kind:      doc.Kind,
		Title:     doc.Title,
		Project:   doc.Project,
		CreatedAt: doc.CreatedAt,
		Exported:  e.options.now(),
		Generator: "mle-tui",
		Report:    doc.Report,
		Messages:  doc.Messages,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
