// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains d and returns every text fragment.
func collect(t *testing.T, d *Decoder) []string {
	t.Helper()
	var out []string
	for i := 0; i < 10000; i++ {
		chunk, err := d.Next()
		require.NoError(t, err)
		if chunk.Done {
			return out
		}
		require.NotEmpty(t, chunk.Text, "non-final chunk must carry text")
		out = append(out, chunk.Text)
	}
	t.Fatal("stream never finished")
	return nil
}

// =============================================================================
// DECODING
// =============================================================================

func TestDecoder_SplitMultiByteCharacters(t *testing.T) {
	const text = "héllo, 世界 👋"
	d := NewDecoder(iotest.OneByteReader(strings.NewReader(text)), "text/event-stream")

	parts := collect(t, d)

	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.NotContains(t, p, "�", "fragment %q split a character", p)
	}
}

func TestDecoder_PreservesOrder(t *testing.T) {
	d := NewDecoder(iotest.OneByteReader(strings.NewReader("abcdefghij")), "")

	parts := collect(t, d)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, parts)
	assert.Equal(t, 10, d.Chunks())
}

func TestDecoder_Charset(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		input       []byte
		want        string
	}{
		{"default utf-8", "", []byte("café"), "café"},
		{"explicit utf-8", "text/plain; charset=utf-8", []byte("café"), "café"},
		{"latin-1", "text/plain; charset=iso-8859-1", []byte{'c', 'a', 'f', 0xe9}, "café"},
		{"unknown charset falls back", "text/plain; charset=x-nope", []byte("ok"), "ok"},
		{"malformed header falls back", ";;;", []byte("ok"), "ok"},
		{"invalid bytes", "", []byte{'a', 0xff, 'b'}, "a�b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder(bytes.NewReader(tc.input), tc.contentType)
			got, err := d.ReadAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// =============================================================================
// TERMINATION
// =============================================================================

func TestDecoder_EmptyBody(t *testing.T) {
	d := NewDecoder(strings.NewReader(""), "")

	chunk, err := d.Next()
	require.NoError(t, err)
	assert.True(t, chunk.Done)
	assert.Empty(t, chunk.Text)
}

func TestDecoder_DoneIsSticky(t *testing.T) {
	d := NewDecoder(strings.NewReader("x"), "")
	collect(t, d)

	for i := 0; i < 3; i++ {
		chunk, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, Chunk{Done: true}, chunk)
	}
}

func TestDecoder_MidStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))
	d := NewDecoder(r, "")

	chunk, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk.Text)

	_, err = d.Next()
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Chunks)
	assert.ErrorIs(t, err, boom)

	_, again := d.Next()
	assert.Same(t, serr, again.(*Error))
}

func TestDecoder_DataWithError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDecoder(iotest.DataErrReader(iotest.ErrReader(boom)), "")

	_, err := d.Next()
	assert.ErrorIs(t, err, boom)
}

type stuckReader struct{}

func (stuckReader) Read([]byte) (int, error) { return 0, nil }

func TestDecoder_NoProgress(t *testing.T) {
	d := NewDecoder(stuckReader{}, "")

	_, err := d.Next()
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

// =============================================================================
// PROCESS
// =============================================================================

func TestDecoder_Process(t *testing.T) {
	d := NewDecoder(iotest.OneByteReader(strings.NewReader("abc")), "")

	var got []string
	err := d.Process(context.Background(), func(text string) error {
		got = append(got, text)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDecoder_ProcessCallbackError(t *testing.T) {
	stop := errors.New("stop")
	d := NewDecoder(iotest.OneByteReader(strings.NewReader("abc")), "")

	calls := 0
	err := d.Process(context.Background(), func(string) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestDecoder_ProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDecoder(strings.NewReader("abc"), "")
	err := d.Process(ctx, func(string) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}
