// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream turns a chunked response body into ordered text fragments.
//
// # Key Types
//
//   - Decoder: Stateful charset-aware reader yielding Chunk values
//   - Chunk: Text fragment or end marker
//   - Error: Mid-stream channel failure
//
// # Usage
//
//	dec := stream.NewDecoder(resp.Body, resp.Header.Get("Content-Type"))
//	for {
//	    chunk, err := dec.Next()
//	    if err != nil {
//	        return err
//	    }
//	    if chunk.Done {
//	        break
//	    }
//	    fmt.Print(chunk.Text)
//	}
package stream
