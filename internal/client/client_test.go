// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/"})
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})

	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, "mle-tui", c.config.UserAgent)
	assert.NotNil(t, c.httpClient)
	assert.Equal(t, DefaultBaseURL, NewClient().BaseURL())
}

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello%20world"},
		{"a&b=c", "a%26b%3Dc"},
		{"100%", "100%25"},
		{"héllo", "h%C3%A9llo"},
		{"a+b", "a%2Bb"},
		// Sub-delims are escaped too; the backend decodes both forms alike.
		{"hi! (it's *done*)", "hi%21%20%28it%27s%20%2Adone%2A%29"},
	}

	for _, tc := range tests {
		if got := EncodeComponent(tc.in); got != tc.want {
			t.Errorf("EncodeComponent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_SendsEncodedQuery(t *testing.T) {
	var gotProject, gotMessage, rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		rawQuery = r.URL.RawQuery
		gotProject = r.URL.Query().Get("project")
		gotMessage = r.URL.Query().Get("message")
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		io.WriteString(w, "ok")
	})

	s, err := c.Chat(context.Background(), "test 2", "what & why?")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "test 2", gotProject)
	assert.Equal(t, "what & why?", gotMessage)
	assert.Equal(t, "project=test%202&message=what%20%26%20why%3F", rawQuery)
	assert.Equal(t, "text/event-stream; charset=utf-8", s.ContentType)

	text, err := s.Decoder().ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestChat_StreamsFlushedChunks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, part := range []string{"Hel", "lo ", "wörld"} {
			io.WriteString(w, part)
			flusher.Flush()
		}
	})

	s, err := c.Chat(context.Background(), "p", "m")
	require.NoError(t, err)
	defer s.Close()

	text, err := s.Decoder().ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello wörld", text)
}

func TestChat_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent crashed", http.StatusInternalServerError)
	})

	_, err := c.Chat(context.Background(), "p", "m")

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeStatus, ce.Type)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, err.Error(), "agent crashed")
}

func TestChat_EmptyBody(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no content", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }},
		{"zero length", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			_, err := c.Chat(context.Background(), "p", "m")
			assert.True(t, IsEmptyBody(err), "err = %v", err)
		})
	}
}

func TestChat_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	_, err := c.Chat(context.Background(), "p", "m")

	assert.ErrorIs(t, err, ErrConnection)
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestLatestReport_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest_report", r.URL.Path)
		http.NotFound(w, r)
	})

	data, err := c.LatestReport(context.Background())

	assert.Nil(t, data)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, report.ErrNoReport)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestLatestReport_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"project_okr":"okr","business_goal":["g"]}`)
	})

	data, err := c.LatestReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "okr", data.ProjectOKR)
	assert.Equal(t, []string{"g"}, data.BusinessGoal)
	assert.NotNil(t, data.Reference)
}

func TestLatestReport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{"server error", http.StatusBadGateway, "bad gateway", ErrTypeStatus},
		{"malformed json", http.StatusOK, "{not json", ErrTypeInvalidResponse},
		{"empty body", http.StatusOK, "", ErrTypeInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			_, err := c.LatestReport(context.Background())

			var ce *ClientError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.wantType, ce.Type)
			assert.False(t, errors.Is(err, report.ErrNoReport))
		})
	}
}

func TestLatestReport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})

	_, err := c.LatestReport(context.Background())

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateReport_PostsJSON(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gen_report", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"result":{"business_goal":["Grow users"]}}`)
	})

	req := report.NewRequest("a/b", "u", "t")
	req.DateRange = report.DateRangeLastWeek
	resp, err := c.GenerateReport(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.Equal(t, []string{"Grow users"}, resp.Result.BusinessGoal)
	assert.Equal(t, "a/b", got["repo"])
	assert.Equal(t, "u", got["username"])
	assert.Equal(t, "t", got["token"])
	assert.Equal(t, "lastWeek", got["dateRange"])
	assert.Equal(t, "weekly", got["recurringReports"])
}

func TestGenerateReport_NoResult(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty envelope", `{}`},
		{"null result", `{"result":null}`},
		{"empty body", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tc.body)
			})

			resp, err := c.GenerateReport(context.Background(), report.NewRequest("a/b", "u", "t"))

			require.NoError(t, err)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestGenerateReport_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	_, err := c.GenerateReport(context.Background(), report.NewRequest("a/b", "u", "t"))

	assert.ErrorIs(t, err, &ClientError{Type: ErrTypeStatus, Status: http.StatusUnprocessableEntity})
}

func TestClientError_Message(t *testing.T) {
	err := &ClientError{Type: ErrTypeStatus, Status: 500, Message: "chat request failed", Cause: errors.New("eof")}
	assert.Equal(t, "chat request failed (status 500): eof", err.Error())
	assert.Equal(t, "status", err.Type.String())
}
