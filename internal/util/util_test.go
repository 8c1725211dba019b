// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_OverwritesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0600); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "updated" {
		t.Errorf("Content = %q, want %q", content, "updated")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// =============================================================================
// DISPLAY WIDTH TESTS
// =============================================================================

func TestStringWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"hello", 5},
		{"世界", 4},
		{"héllo", 5},
	}

	for _, tc := range tests {
		if got := StringWidth(tc.input); got != tc.want {
			t.Errorf("StringWidth(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		cut      bool
	}{
		{"fits", "hello", 10, false},
		{"exact", "hello", 5, false},
		{"ascii cut", "hello world", 8, true},
		{"wide cut", "世界世界世界", 7, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.input, tc.maxWidth)
			if StringWidth(got) > tc.maxWidth {
				t.Errorf("Truncate(%q, %d) = %q is %d wide", tc.input, tc.maxWidth, got, StringWidth(got))
			}
			if tc.cut != strings.HasSuffix(got, Ellipsis) {
				t.Errorf("Truncate(%q, %d) = %q, cut = %v", tc.input, tc.maxWidth, got, tc.cut)
			}
			if strings.ContainsRune(got, '�') {
				t.Errorf("Truncate split a character: %q", got)
			}
		})
	}

	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate(_, 0) = %q, want empty", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("\n\n  first line  \nsecond", 40); got != "first line" {
		t.Errorf("FirstLine() = %q, want %q", got, "first line")
	}
	if got := FirstLine("   \n", 40); got != "" {
		t.Errorf("FirstLine(blank) = %q, want empty", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight() = %q, want %q", got, "ab   ")
	}
	if got := PadRight("世界", 6); StringWidth(got) != 6 {
		t.Errorf("PadRight() width = %d, want 6", StringWidth(got))
	}
}

// =============================================================================
// WRAPPING TESTS
// =============================================================================

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"no width", "aaaa bbbb", 0, "aaaa bbbb"},
		{"word boundary", "aaaa bbbb", 4, "aaaa\nbbbb"},
		{"long word broken", "abcdefgh", 4, "abcd\nefgh"},
		{"keeps newlines", "a\nb", 10, "a\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Wrap(tc.input, tc.width); got != tc.want {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.want)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	if got := Indent("a\nb", 2); got != "  a\n  b" {
		t.Errorf("Indent() = %q, want %q", got, "  a\n  b")
	}
	if got := Indent("a", 0); got != "a" {
		t.Errorf("Indent(_, 0) = %q, want %q", got, "a")
	}
}
