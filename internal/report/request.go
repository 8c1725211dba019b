// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"strings"
)

// =============================================================================
// REQUEST OPTIONS
// =============================================================================

// DateRange selects the activity window a report covers.
type DateRange string

const (
	DateRangeUnset     DateRange = ""
	DateRangeLastDay   DateRange = "lastDay"
	DateRangeLastWeek  DateRange = "lastWeek"
	DateRangeLastMonth DateRange = "lastMonth"
)

// DateRanges lists the selectable date ranges in display order.
var DateRanges = []DateRange{DateRangeLastDay, DateRangeLastWeek, DateRangeLastMonth}

// Recurrence is how often the backend should regenerate the report.
type Recurrence string

const (
	RecurrenceUnset   Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceNever   Recurrence = "never"
)

// Recurrences lists the selectable schedules in display order.
var Recurrences = []Recurrence{RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceNever}

// DefaultRecurrence is what a fresh report form starts with.
const DefaultRecurrence = RecurrenceWeekly

// =============================================================================
// REQUEST
// =============================================================================

// Request asks the backend to generate a report for a repository.
type Request struct {
	Repo              string     `json:"repo"`
	Username          string     `json:"username"`
	Token             string     `json:"token"`
	OKR               string     `json:"okr,omitempty"`
	DateRange         DateRange  `json:"dateRange,omitempty"`
	RecurringReports  Recurrence `json:"recurringReports,omitempty"`
	AdditionalSources []string   `json:"additionalSources,omitempty"`
}

// NewRequest returns a request initialized the way a fresh form is.
func NewRequest(repo, username, token string) Request {
	return Request{
		Repo:             repo,
		Username:         username,
		Token:            token,
		RecurringReports: DefaultRecurrence,
	}
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the names of the invalid fields.
func (e ValidateErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, err := range e {
		out = append(out, err.Field)
	}
	return out
}

// Validate checks mandatory fields and enumerated values.
func (r Request) Validate() error {
	var errs ValidateErrors

	required := []struct{ field, value string }{
		{"repo", r.Repo},
		{"username", r.Username},
		{"token", r.Token},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, ValidationError{Field: f.field, Message: "is required"})
		}
	}

	if r.DateRange != DateRangeUnset && !r.DateRange.Valid() {
		errs = append(errs, ValidationError{
			Field:   "dateRange",
			Message: fmt.Sprintf("invalid value '%s', must be one of: lastDay, lastWeek, lastMonth", r.DateRange),
		})
	}
	if r.RecurringReports != RecurrenceUnset && !r.RecurringReports.Valid() {
		errs = append(errs, ValidationError{
			Field:   "recurringReports",
			Message: fmt.Sprintf("invalid value '%s', must be one of: daily, weekly, monthly, never", r.RecurringReports),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Valid reports whether d is one of the known ranges.
func (d DateRange) Valid() bool {
	for _, v := range DateRanges {
		if d == v {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the known schedules.
func (r Recurrence) Valid() bool {
	for _, v := range Recurrences {
		if r == v {
			return true
		}
	}
	return false
}
