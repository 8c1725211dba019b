// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/ui/styles"
)

func newTestTheme() *styles.Theme {
	return styles.NewTheme("notty")
}

func TestReportFormDefaults(t *testing.T) {
	defaults := report.NewRequest("acme/app", "octo", "secret")
	defaults.DateRange = report.DateRangeLastMonth
	defaults.AdditionalSources = []string{"https://wiki", "notes.md"}

	f := newReportForm(defaults)
	req := f.request()

	assert.Equal(t, defaults.Repo, req.Repo)
	assert.Equal(t, defaults.Username, req.Username)
	assert.Equal(t, defaults.Token, req.Token)
	assert.Equal(t, report.DateRangeLastMonth, req.DateRange)
	assert.Equal(t, report.RecurrenceWeekly, req.RecurringReports)
	assert.Equal(t, []string{"https://wiki", "notes.md"}, req.AdditionalSources)
	assert.Equal(t, fieldRepo, f.focus)
}

func TestReportFormFocusWraps(t *testing.T) {
	f := newReportForm(report.Request{})

	f.prev()
	assert.Equal(t, fieldSources, f.focus)
	f.next()
	assert.Equal(t, fieldRepo, f.focus)
	assert.True(t, f.inputs[fieldRepo].Focused())
	assert.False(t, f.inputs[fieldSources].Focused())
}

func TestReportFormSelects(t *testing.T) {
	f := newReportForm(report.Request{})
	f.setFocus(fieldDateRange)

	assert.Equal(t, report.DateRange(""), f.request().DateRange)
	f.update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, report.DateRangeLastDay, f.request().DateRange)
	f.update(tea.KeyMsg{Type: tea.KeyLeft})
	f.update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, report.DateRangeLastMonth, f.request().DateRange)

	f.setFocus(fieldRecurring)
	f.update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, report.RecurrenceMonthly, f.request().RecurringReports)
}

func TestReportFormSubmit(t *testing.T) {
	f := newReportForm(report.Request{})

	_, ok := f.submit()
	require.False(t, ok)
	var verr report.ValidateErrors
	require.ErrorAs(t, f.err, &verr)
	assert.ElementsMatch(t, []string{"repo", "username", "token"}, verr.Fields())

	f.inputs[fieldRepo].SetValue(" acme/app ")
	f.inputs[fieldUsername].SetValue("octo")
	f.inputs[fieldToken].SetValue("secret")
	f.inputs[fieldSources].SetValue(" a, ,b ")

	req, ok := f.submit()
	require.True(t, ok)
	assert.NoError(t, f.err)
	assert.Equal(t, "acme/app", req.Repo)
	assert.Equal(t, []string{"a", "b"}, req.AdditionalSources)
}

func TestReportFormView(t *testing.T) {
	f := newReportForm(report.NewRequest("acme/app", "octo", "secret"))
	theme := newTestTheme()

	view := f.view(theme, 100)
	assert.Contains(t, view, "GitHub repo")
	assert.Contains(t, view, "acme/app")
	assert.Contains(t, view, "weekly")
	assert.NotContains(t, view, "secret", "token is masked")
}
