// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client provides the HTTP client for the agent backend.
//
// Three endpoints are used:
//
//   - GET  /chat?project=&message=   streamed text reply
//   - GET  /latest_report            report JSON, or 404 when none exists
//   - POST /gen_report               JSON request, {"result"?: report}
//
// # Key Types
//
//   - Client: Thread-safe backend client
//   - ClientConfig: Base URL, timeout and transport options
//   - ChatStream: Open streamed reply with its content type
//   - ClientError: Typed error with ErrorType and HTTP status
//
// # Usage
//
//	c := client.NewClientWithConfig(&client.ClientConfig{BaseURL: "http://localhost:8000"})
//	data, err := c.LatestReport(ctx)
//	if client.IsNotFound(err) {
//	    // nothing generated yet
//	}
package client
