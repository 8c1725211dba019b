// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNewRequest_Defaults(t *testing.T) {
	req := NewRequest("a/b", "u", "t")

	if req.RecurringReports != RecurrenceWeekly {
		t.Errorf("RecurringReports = %q, want %q", req.RecurringReports, RecurrenceWeekly)
	}
	if req.DateRange != DateRangeUnset {
		t.Errorf("DateRange = %q, want unset", req.DateRange)
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantFields []string
	}{
		{"valid", NewRequest("a/b", "u", "t"), nil},
		{"valid without schedule", Request{Repo: "a/b", Username: "u", Token: "t"}, nil},
		{"missing all", Request{}, []string{"repo", "username", "token"}},
		{"blank repo", Request{Repo: "  ", Username: "u", Token: "t"}, []string{"repo"}},
		{"missing token", Request{Repo: "a/b", Username: "u"}, []string{"token"}},
		{"bad range", Request{Repo: "a/b", Username: "u", Token: "t", DateRange: "lastYear"}, []string{"dateRange"}},
		{"bad schedule", Request{Repo: "a/b", Username: "u", Token: "t", RecurringReports: "hourly"}, []string{"recurringReports"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error = %v, want ValidateErrors", err)
			}
			if got := verrs.Fields(); !reflect.DeepEqual(got, tc.wantFields) {
				t.Errorf("Fields() = %v, want %v", got, tc.wantFields)
			}
		})
	}
}

func TestRequest_JSONFieldNames(t *testing.T) {
	req := Request{
		Repo:              "a/b",
		Username:          "u",
		Token:             "t",
		OKR:               "grow",
		DateRange:         DateRangeLastWeek,
		RecurringReports:  RecurrenceDaily,
		AdditionalSources: []string{"slack"},
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	for _, key := range []string{"repo", "username", "token", "okr", "dateRange", "recurringReports", "additionalSources"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing %q: %s", key, b)
		}
	}
}

func TestRequest_JSONOmitsUnsetOptionals(t *testing.T) {
	b, err := json.Marshal(Request{Repo: "a/b", Username: "u", Token: "t"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"repo":"a/b","username":"u","token":"t"}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}
