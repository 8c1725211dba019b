// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"strings"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// ToMarkdown renders d as a Markdown document.
//
// Sections always appear in the same order and an empty list keeps its
// header with no bullets. The output depends only on d. A nil report renders
// as an empty one.
func ToMarkdown(d *Data) string {
	if d == nil {
		d = Empty()
	}

	var sb strings.Builder
	sb.WriteString("## Project Report\n\n")

	if d.ProjectOKR != "" {
		fmt.Fprintf(&sb, "### Project OKR\n%s\n\n", d.ProjectOKR)
	}

	section(&sb, "### Business Goal", bullets(d.BusinessGoal))

	sb.WriteString("### Work Finished\n\n")
	section(&sb, "#### Development Progress", bullets(d.DevProgress))
	section(&sb, "#### Communication Progress", bullets(d.CommunicateProgress))

	sb.WriteString("### Work TODOs\n\n")
	section(&sb, "#### Development TODOs", mapLines(d.DevTodo, func(t DevTodo) string {
		return fmt.Sprintf("- **%s** (%s): %s", t.Task, t.Priority, t.Description)
	}))
	section(&sb, "#### Communication TODOs", mapLines(d.CommunicateTodo, func(t CommunicateTodo) string {
		return fmt.Sprintf("- **%s** (%s)", t.Task, t.Priority)
	}))

	sb.WriteString("### Hard Problems\n\n")
	section(&sb, "#### Challenges", bullets(d.HardParts))
	section(&sb, "#### Manager Help Required", bullets(d.RequireManagerHelp))

	sb.WriteString("### Other\n\n")
	section(&sb, "#### Suggestions", bullets(d.SuggestionsToUser))
	section(&sb, "#### References", mapLines(d.Reference, func(r Reference) string {
		return fmt.Sprintf("- [%s](%s)", r.Title, r.Link)
	}))

	return sb.String()
}

// section writes a header line, its body and a blank separator line.
func section(sb *strings.Builder, header, body string) {
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n\n")
}

func bullets(items []string) string {
	return mapLines(items, func(s string) string { return "- " + s })
}

func mapLines[T any](items []T, line func(T) string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = line(item)
	}
	return strings.Join(lines, "\n")
}
