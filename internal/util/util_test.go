// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides string and file helpers for the smithers tool runner.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_ReplacesExisting(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := os.WriteFile(path, []byte("old content"), 0644); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("new content"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "new content" {
		t.Errorf("Content = %q, want %q", string(content), "new content")
	}
}

func TestAtomicWriteFile_NoTempFileLeftover(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only target file, found %v", names)
	}
}

// =============================================================================
// STRING TRUNCATION TESTS
// =============================================================================

func TestCutRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"hard cut, no ellipsis", "hello world", 8, "hello wo"},
		{"zero max", "hello", 0, ""},
		{"multibyte preserved", "héllo wörld", 2, "hé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CutRunes(tt.input, tt.maxRunes)
			if got != tt.want {
				t.Errorf("CutRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"max too small for ellipsis", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"multibyte preserved", "héllo wörld", 8, "héllo..."},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.maxRunes)
			if got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateDisplay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "abc", 10, "abc"},
		{"cut with ellipsis", "abcdefghij", 6, "abc..."},
		{"zero width", "abc", 0, ""},
		{"cjk counts double", "日本語", 10, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateDisplay(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("TruncateDisplay(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateDisplay_CJKCut(t *testing.T) {
	// Each ideograph is 2 columns wide; a 7-column budget keeps two of
	// them plus the ellipsis.
	got := TruncateDisplay("日本語テスト", 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateDisplay produced width %d, budget 7 (%q)", StringWidth(got), got)
	}
	if got == "日本語テスト" {
		t.Error("Expected truncation for over-budget CJK string")
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
	if w := StringWidth("日本"); w != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", w)
	}
}
