// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream turns a chunked response body into ordered text fragments.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// TYPES
// =============================================================================

// Chunk is one step of a decoded stream: either a text fragment or the end
// marker. A chunk never carries both.
type Chunk struct {
	Text string
	Done bool
}

// Error reports a failure of the underlying channel after some chunks were
// already delivered.
type Error struct {
	Chunks int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stream interrupted after %d chunks: %v", e.Chunks, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Callback is invoked once per text fragment, in arrival order.
// Returning an error stops processing.
type Callback func(text string) error

const (
	defaultBufferSize = 4096

	// Readers that keep returning 0, nil are treated as broken.
	maxEmptyReads = 100
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads raw bytes from a response body and yields decoded text.
//
// Decoding is stateful: a multi-byte character split across two reads is held
// back until its remaining bytes arrive, so no fragment ever contains half a
// character. Invalid input decodes to U+FFFD.
//
// A Decoder is finite and cannot be restarted. Once it reports Done, or an
// error, every later call to Next returns the same result.
type Decoder struct {
	r      io.Reader
	buf    []byte
	chunks int
	done   bool
	err    error
}

// NewDecoder creates a decoder for r. The character set is taken from the
// charset parameter of contentType and defaults to UTF-8.
func NewDecoder(r io.Reader, contentType string) *Decoder {
	return &Decoder{
		r:   transform.NewReader(r, lookupEncoding(contentType).NewDecoder()),
		buf: make([]byte, defaultBufferSize),
	}
}

// lookupEncoding resolves the charset named in a Content-Type header value.
func lookupEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return unicode.UTF8
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return unicode.UTF8
	}
	charset := strings.TrimSpace(params["charset"])
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		log.Printf("STREAM_CHARSET | charset=%s fallback=utf-8", charset)
		return unicode.UTF8
	}
	return enc
}

// Next returns the next fragment of the stream.
//
// Empty reads are skipped, so a non-Done chunk always has text. At the end of
// input Next returns a Done chunk. A read failure is returned as *Error.
func (d *Decoder) Next() (Chunk, error) {
	if d.err != nil {
		return Chunk{}, d.err
	}
	if d.done {
		return Chunk{Done: true}, nil
	}

	for empty := 0; empty < maxEmptyReads; {
		n, err := d.r.Read(d.buf)
		if n > 0 {
			d.chunks++
			text := string(d.buf[:n])
			switch {
			case errors.Is(err, io.EOF):
				d.done = true
			case err != nil:
				d.err = &Error{Chunks: d.chunks, Err: err}
			}
			return Chunk{Text: text}, nil
		}

		if errors.Is(err, io.EOF) {
			d.done = true
			return Chunk{Done: true}, nil
		}
		if err != nil {
			d.err = &Error{Chunks: d.chunks, Err: err}
			return Chunk{}, d.err
		}
		empty++
	}

	d.err = &Error{Chunks: d.chunks, Err: io.ErrNoProgress}
	return Chunk{}, d.err
}

// Chunks returns the number of text fragments delivered so far.
func (d *Decoder) Chunks() int {
	return d.chunks
}

// Process reads the stream and calls fn for each fragment.
// Blocks until the stream is complete, fn fails or the context is cancelled.
func (d *Decoder) Process(ctx context.Context, fn Callback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := d.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if chunk.Done {
			return nil
		}
		if err := fn(chunk.Text); err != nil {
			return err
		}
	}
}

// ReadAll drains the stream and returns the concatenated text.
func (d *Decoder) ReadAll(ctx context.Context) (string, error) {
	var sb strings.Builder
	err := d.Process(ctx, func(text string) error {
		sb.WriteString(text)
		return nil
	})
	return sb.String(), err
}
