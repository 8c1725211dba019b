// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/ui/styles"
)

// =============================================================================
// REPORT FORM
// =============================================================================

type formField int

const (
	fieldRepo formField = iota
	fieldUsername
	fieldToken
	fieldOKR
	fieldDateRange
	fieldRecurring
	fieldSources
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldRepo:      "GitHub repo",
	fieldUsername:  "GitHub username",
	fieldToken:     "GitHub token",
	fieldOKR:       "Project OKR",
	fieldDateRange: "Date range",
	fieldRecurring: "Recurring reports",
	fieldSources:   "Extra sources",
}

// dateRangeOptions starts with "" so the range can be left to the backend.
var dateRangeOptions = append([]report.DateRange{""}, report.DateRanges...)

// reportForm collects a report.Request. Text fields are textinputs; the
// date range and recurrence are cycled with left/right.
type reportForm struct {
	inputs    map[formField]*textinput.Model
	focus     formField
	dateRange int
	recurring int
	err       error
}

func newReportForm(defaults report.Request) *reportForm {
	f := &reportForm{inputs: make(map[formField]*textinput.Model)}

	mk := func(field formField, placeholder, value string) {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.SetValue(value)
		f.inputs[field] = &ti
	}
	mk(fieldRepo, "owner/name", defaults.Repo)
	mk(fieldUsername, "login", defaults.Username)
	mk(fieldToken, "ghp_...", defaults.Token)
	mk(fieldOKR, "optional", defaults.OKR)
	mk(fieldSources, "comma separated, optional", strings.Join(defaults.AdditionalSources, ", "))
	f.inputs[fieldToken].EchoMode = textinput.EchoPassword
	f.inputs[fieldToken].EchoCharacter = '•'

	for i, d := range dateRangeOptions {
		if d == defaults.DateRange {
			f.dateRange = i
		}
	}
	f.recurring = indexOf(report.Recurrences, report.DefaultRecurrence)
	if defaults.RecurringReports != "" {
		f.recurring = indexOf(report.Recurrences, defaults.RecurringReports)
	}

	f.setFocus(fieldRepo)
	return f
}

func indexOf[T comparable](items []T, v T) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return 0
}

func (f *reportForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	for k, in := range f.inputs {
		if k == f.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *reportForm) next() { f.setFocus(f.focus + 1) }
func (f *reportForm) prev() { f.setFocus(f.focus - 1) }

// request builds the request from the current field values.
func (f *reportForm) request() report.Request {
	req := report.NewRequest(
		strings.TrimSpace(f.inputs[fieldRepo].Value()),
		strings.TrimSpace(f.inputs[fieldUsername].Value()),
		strings.TrimSpace(f.inputs[fieldToken].Value()),
	)
	req.OKR = strings.TrimSpace(f.inputs[fieldOKR].Value())
	req.DateRange = dateRangeOptions[f.dateRange]
	req.RecurringReports = report.Recurrences[f.recurring]
	for _, s := range strings.Split(f.inputs[fieldSources].Value(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			req.AdditionalSources = append(req.AdditionalSources, s)
		}
	}
	return req
}

// submit validates the form and returns the request, or records the error.
func (f *reportForm) submit() (report.Request, bool) {
	req := f.request()
	if err := req.Validate(); err != nil {
		f.err = err
		return req, false
	}
	f.err = nil
	return req, true
}

// update routes a key to the focused field.
func (f *reportForm) update(msg tea.KeyMsg) tea.Cmd {
	switch f.focus {
	case fieldDateRange:
		f.dateRange = cycle(f.dateRange, len(dateRangeOptions), msg.String())
		return nil
	case fieldRecurring:
		f.recurring = cycle(f.recurring, len(report.Recurrences), msg.String())
		return nil
	}
	in := f.inputs[f.focus]
	updated, cmd := in.Update(msg)
	*in = updated
	return cmd
}

func cycle(i, n int, key string) int {
	switch key {
	case "left", "h":
		return (i + n - 1) % n
	case "right", "l", " ":
		return (i + 1) % n
	}
	return i
}

// =============================================================================
// RENDERING
// =============================================================================

func (f *reportForm) view(theme *styles.Theme, width int) string {
	var rows []string
	for field := formField(0); field < fieldCount; field++ {
		label := theme.FormLabel
		if field == f.focus {
			label = theme.FormLabelFocused
		}

		var value string
		switch field {
		case fieldDateRange:
			value = renderOptions(theme, dateRangeLabels(), f.dateRange, field == f.focus)
		case fieldRecurring:
			value = renderOptions(theme, recurrenceLabels(), f.recurring, field == f.focus)
		default:
			value = f.inputs[field].View()
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fieldLabels[field]), value))
	}

	rows = append(rows, "", theme.FormHint.Render("Enter generate · Tab/S-Tab move · ←/→ choose · Esc close"))
	if f.err != nil {
		rows = append(rows, "", theme.Status("error", f.err.Error()))
	}

	box := theme.FormBox
	if width > 4 {
		box = box.Width(width - 4)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderOptions(theme *styles.Theme, labels []string, selected int, focused bool) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == selected && focused {
			parts[i] = theme.FormOptionActive.Render(l)
		} else if i == selected {
			parts[i] = theme.FormOption.Bold(true).Render(l)
		} else {
			parts[i] = theme.FormOption.Render(l)
		}
	}
	return strings.Join(parts, " ")
}

func dateRangeLabels() []string {
	labels := make([]string, len(dateRangeOptions))
	for i, d := range dateRangeOptions {
		if d == "" {
			labels[i] = "default"
			continue
		}
		labels[i] = string(d)
	}
	return labels
}

func recurrenceLabels() []string {
	labels := make([]string, len(report.Recurrences))
	for i, r := range report.Recurrences {
		labels[i] = string(r)
	}
	return labels
}
