// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client provides the HTTP client for the agent backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/mle-tui/internal/report"
	"github.com/jeranaias/mle-tui/internal/stream"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is where the agent backend listens by default.
	DefaultBaseURL = "http://localhost:8000"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin (default: http://localhost:8000)
	BaseURL string

	// Timeout bounds report requests. Chat streams are not bounded.
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration

	// UserAgent is sent with every request (default: mle-tui)
	UserAgent string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   DefaultBaseURL,
		UserAgent: "mle-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat and report endpoints of the agent backend.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	c := client.NewClient()
//	s, err := c.Chat(ctx, "test2", "hello")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	text, err := s.Decoder().ReadAll(ctx)
type Client struct {
	config     *ClientConfig
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = "mle-tui"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the backend origin in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout > 0 {
		return context.WithTimeout(ctx, c.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}

// statusError drains a failed response into a ClientError.
func statusError(op string, resp *http.Response) *ClientError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := op + " failed"
	if text := strings.TrimSpace(string(body)); text != "" {
		msg += ": " + text
	}
	return &ClientError{Type: ErrTypeStatus, Status: resp.StatusCode, Message: msg}
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// EncodeComponent percent-encodes s for use as a single query value.
// Spaces become %20 rather than +.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// =============================================================================
// CHAT
// =============================================================================

// ChatStream is an open chat reply. The caller must Close it.
type ChatStream struct {
	Body        io.ReadCloser
	ContentType string
	Status      int
}

// Decoder returns a text decoder over the reply body.
func (s *ChatStream) Decoder() *stream.Decoder {
	return stream.NewDecoder(s.Body, s.ContentType)
}

// Close releases the underlying connection.
func (s *ChatStream) Close() error {
	return s.Body.Close()
}

// Chat sends message for project and returns the streamed reply.
//
// A non-success status is returned as a ClientError of type ErrTypeStatus.
// A reply known to be bodiless (204, or zero Content-Length) returns
// ErrEmptyBody.
func (c *Client) Chat(ctx context.Context, project, message string) (*ChatStream, error) {
	path := "/chat?project=" + EncodeComponent(project) + "&message=" + EncodeComponent(message)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream, text/plain")

	log.Printf("CHAT_REQUEST | project=%s chars=%d", project, len([]rune(message)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("chat request", err)
	}

	if !success(resp.StatusCode) {
		defer resp.Body.Close()
		log.Printf("CHAT_REQUEST | status=%d", resp.StatusCode)
		return nil, statusError("chat request", resp)
	}

	if resp.StatusCode == http.StatusNoContent || resp.Body == http.NoBody || resp.ContentLength == 0 {
		resp.Body.Close()
		log.Printf("CHAT_REQUEST | status=%d body=empty", resp.StatusCode)
		return nil, ErrEmptyBody
	}

	return &ChatStream{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Status:      resp.StatusCode,
	}, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// LatestReport fetches the most recently generated report.
//
// A 404 is returned as a ClientError of type ErrTypeNotFound wrapping
// report.ErrNoReport.
func (c *Client) LatestReport(ctx context.Context) (*report.Data, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/latest_report", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("latest report request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ClientError{
			Type:    ErrTypeNotFound,
			Status:  resp.StatusCode,
			Message: "no report available",
			Cause:   report.ErrNoReport,
		}
	}
	if !success(resp.StatusCode) {
		return nil, statusError("latest report request", resp)
	}

	var data report.Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode report", Cause: err}
	}
	return &data, nil
}

// GenerateReport submits a report job.
//
// The returned response has a nil Result when the backend accepted the job
// without returning a report inline; an empty 200 body counts as that.
func (c *Client) GenerateReport(ctx context.Context, r report.Request) (*report.GenerateResponse, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, "/gen_report", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("generate report request", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, statusError("generate report request", resp)
	}

	var out report.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return &out, nil
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode generate response", Cause: err}
	}
	return &out, nil
}

// String describes the client for diagnostics.
func (c *Client) String() string {
	return fmt.Sprintf("client(%s)", c.baseURL)
}
