// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mle-tui/internal/model"
	"github.com/jeranaias/mle-tui/internal/report"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions(t *testing.T) *Options {
	t.Helper()
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleReport() *report.Data {
	d := report.Empty()
	d.ProjectOKR = "Ship v2"
	d.BusinessGoal = []string{"Grow usage"}
	d.DevTodo = []report.DevTodo{{Task: "Fix login", Description: "token expiry", Priority: "high"}}
	d.Reference = []report.Reference{{Title: "Docs", Link: "https://example.com"}}
	return d
}

func sampleMessages() []model.Message {
	user := model.NewUserMessage("write a parser", "demo")
	user.Timestamp = fixedNow
	code := model.NewAssistantMessage("func parse() {}", "demo").WithType(model.MsgTypeCode)
	code.Timestamp = fixedNow.Add(time.Second)
	return []model.Message{user, code}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{".MD", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{".json", FormatJSON, false},
		{"html", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveReportMarkdown(t *testing.T) {
	opts := testOptions(t)

	path, err := SaveReport(sampleReport(), FormatMarkdown, opts)
	require.NoError(t, err)
	assert.Equal(t, "report_Project_Report_20250314_092653.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "---\n"), "frontmatter expected")
	assert.Contains(t, text, "kind: report\n")
	assert.Contains(t, text, "generator: mle-tui\n")
	assert.Contains(t, text, report.ToMarkdown(sampleReport()))
}

func TestSaveReportMarkdownWithoutMetadata(t *testing.T) {
	opts := testOptions(t)
	opts.IncludeMetadata = false

	path, err := SaveReport(sampleReport(), FormatMarkdown, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, report.ToMarkdown(sampleReport()), string(content))
}

func TestSaveReportJSON(t *testing.T) {
	t.Run("bare report round trips", func(t *testing.T) {
		opts := testOptions(t)
		opts.IncludeMetadata = false

		path, err := SaveReport(sampleReport(), FormatJSON, opts)
		require.NoError(t, err)
		assert.Equal(t, ".json", filepath.Ext(path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		var got report.Data
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, *sampleReport(), got)
	})

	t.Run("envelope carries metadata", func(t *testing.T) {
		opts := testOptions(t)

		path, err := SaveReport(sampleReport(), FormatJSON, opts)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		var env struct {
			Kind      string       `json:"kind"`
			Generator string       `json:"generator"`
			Report    *report.Data `json:"report"`
		}
		require.NoError(t, json.Unmarshal(content, &env))
		assert.Equal(t, "report", env.Kind)
		assert.Equal(t, "mle-tui", env.Generator)
		require.NotNil(t, env.Report)
		assert.Equal(t, "Ship v2", env.Report.ProjectOKR)
	})
}

func TestSaveReportHTML(t *testing.T) {
	opts := testOptions(t)

	path, err := SaveReport(sampleReport(), FormatHTML, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "<!DOCTYPE html>")
	assert.Contains(t, text, "<h2>Project Report</h2>")
	assert.Contains(t, text, `<a href="https://example.com">Docs</a>`)
	assert.NotContains(t, text, "generator: mle-tui", "frontmatter must not leak into HTML body")
}

func TestSaveReportNil(t *testing.T) {
	_, err := SaveReport(nil, FormatMarkdown, testOptions(t))
	assert.Error(t, err)
}

func TestSaveTranscriptMarkdown(t *testing.T) {
	opts := testOptions(t)

	path, err := SaveTranscript(sampleMessages(), "demo", FormatMarkdown, opts)
	require.NoError(t, err)
	assert.Equal(t, "transcript_Chat_demo_20250314_092653.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "project: demo\n")
	assert.Contains(t, text, "messages: 2\n")
	assert.Contains(t, text, "# Chat demo\n")
	assert.Contains(t, text, "### You <sub>09:26:53</sub>\n\nwrite a parser\n")
	assert.Contains(t, text, "### Agent (code) <sub>09:26:54</sub>\n\n```\nfunc parse() {}\n```\n")
}

func TestSaveTranscriptWithoutTimestamps(t *testing.T) {
	opts := testOptions(t)
	opts.IncludeTimestamps = false

	path, err := SaveTranscript(sampleMessages(), "demo", FormatMarkdown, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "<sub>")
}

func TestSaveTranscriptJSON(t *testing.T) {
	opts := testOptions(t)
	opts.IncludeMetadata = false
	msgs := sampleMessages()

	path, err := SaveTranscript(msgs, "demo", FormatJSON, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []model.Message
	require.NoError(t, json.Unmarshal(content, &got))
	require.Len(t, got, 2)
	assert.Equal(t, msgs[0].ID, got[0].ID)
	assert.Equal(t, model.MsgTypeCode, got[1].MsgType)
}

func TestSaveTranscriptEmpty(t *testing.T) {
	_, err := SaveTranscript(nil, "demo", FormatMarkdown, testOptions(t))
	assert.Error(t, err)
}

func TestExportToFileMissingDir(t *testing.T) {
	opts := testOptions(t)
	opts.OutputDir = filepath.Join(opts.OutputDir, "reports", "weekly")

	path, err := SaveReport(sampleReport(), FormatMarkdown, opts)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Project Report", "Project_Report"},
		{"a/b\\c:d", "a-b-c-d"},
		{"   ", "untitled"},
		{"", "untitled"},
		{"tab\there", "tab_here"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
		{"日本語 レポート", "日本語_レポート"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"line\nbreak"`, escapeYAML("line\nbreak"))
	assert.Equal(t, `"say \"hi\""`, escapeYAML(`say "hi"`))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\#1 \*bold\* \_x\_ \[y\]`, escapeMarkdown("#1 *bold* _x_ [y]"))
}
