// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report holds project report types, rendering and the job controller.
package report

import (
	"encoding/json"
	"errors"
)

// ErrNoReport marks the backend answer that no report has been generated yet.
var ErrNoReport = errors.New("no report generated yet")

// =============================================================================
// REPORT DATA
// =============================================================================

// Data is the structured project report produced by the backend.
//
// Every list is non-nil once decoded, so callers can range over any field
// without checking for absence.
type Data struct {
	ProjectOKR          string            `json:"project_okr"`
	BusinessGoal        []string          `json:"business_goal"`
	DevProgress         []string          `json:"dev_progress"`
	CommunicateProgress []string          `json:"communicate_progress"`
	DevTodo             []DevTodo         `json:"dev_todo"`
	CommunicateTodo     []CommunicateTodo `json:"communicate_todo"`
	HardParts           []string          `json:"hard_parts"`
	RequireManagerHelp  []string          `json:"require_manager_help"`
	SuggestionsToUser   []string          `json:"suggestions_to_user"`
	Reference           []Reference       `json:"reference"`
}

// DevTodo is a development task still to be done.
type DevTodo struct {
	Task        string `json:"task"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CommunicateTodo is a communication task still to be done.
type CommunicateTodo struct {
	Task     string `json:"task"`
	Priority string `json:"priority"`
}

// Reference is a titled link. Older backends send a bare URL string, which
// decodes with Title and Link both set to it.
type Reference struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// UnmarshalJSON accepts either {"title","link"} or a plain string.
func (r *Reference) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Title, r.Link = s, s
		return nil
	}

	type plain Reference
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Reference(p)
	return nil
}

// Empty returns a report with every list present and empty.
func Empty() *Data {
	d := &Data{}
	d.Normalize()
	return d
}

// Normalize replaces absent lists with empty ones.
func (d *Data) Normalize() {
	if d.BusinessGoal == nil {
		d.BusinessGoal = []string{}
	}
	if d.DevProgress == nil {
		d.DevProgress = []string{}
	}
	if d.CommunicateProgress == nil {
		d.CommunicateProgress = []string{}
	}
	if d.DevTodo == nil {
		d.DevTodo = []DevTodo{}
	}
	if d.CommunicateTodo == nil {
		d.CommunicateTodo = []CommunicateTodo{}
	}
	if d.HardParts == nil {
		d.HardParts = []string{}
	}
	if d.RequireManagerHelp == nil {
		d.RequireManagerHelp = []string{}
	}
	if d.SuggestionsToUser == nil {
		d.SuggestionsToUser = []string{}
	}
	if d.Reference == nil {
		d.Reference = []Reference{}
	}
}

// UnmarshalJSON decodes a report and normalizes it.
func (d *Data) UnmarshalJSON(b []byte) error {
	type plain Data
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = Data(p)
	d.Normalize()
	return nil
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	c := *d
	c.BusinessGoal = append([]string{}, d.BusinessGoal...)
	c.DevProgress = append([]string{}, d.DevProgress...)
	c.CommunicateProgress = append([]string{}, d.CommunicateProgress...)
	c.DevTodo = append([]DevTodo{}, d.DevTodo...)
	c.CommunicateTodo = append([]CommunicateTodo{}, d.CommunicateTodo...)
	c.HardParts = append([]string{}, d.HardParts...)
	c.RequireManagerHelp = append([]string{}, d.RequireManagerHelp...)
	c.SuggestionsToUser = append([]string{}, d.SuggestionsToUser...)
	c.Reference = append([]Reference{}, d.Reference...)
	return &c
}

// GenerateResponse is the envelope returned by a generation request.
// A nil Result means the job was accepted without an inline report.
type GenerateResponse struct {
	Result *Data `json:"result,omitempty"`
}
