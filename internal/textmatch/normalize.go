// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package textmatch locates edit targets in file content.
// normalize.go handles BOM stripping and line-ending detection/conversion.
package textmatch

import "strings"

// utf8BOM is the UTF-8 byte-order mark some editors prepend to files.
const utf8BOM = "\xef\xbb\xbf"

// =============================================================================
// BYTE-ORDER MARK
// =============================================================================

// StripBOM removes a leading UTF-8 BOM and reports whether one was present.
func StripBOM(s string) (string, bool) {
	if strings.HasPrefix(s, utf8BOM) {
		return s[len(utf8BOM):], true
	}
	return s, false
}

// AddBOM prepends a UTF-8 BOM.
func AddBOM(s string) string {
	return utf8BOM + s
}

// =============================================================================
// LINE ENDINGS
// =============================================================================

// LineEnding is the dominant line-ending style of a file.
type LineEnding int

const (
	// LF is Unix-style "\n".
	LF LineEnding = iota
	// CRLF is Windows-style "\r\n".
	CRLF
)

// String returns the lowercase name of the line ending.
func (le LineEnding) String() string {
	if le == CRLF {
		return "crlf"
	}
	return "lf"
}

// DetectLineEnding reports CRLF when the first "\r\n" in s occurs before the
// first bare "\n", and LF otherwise. A file with no newlines is LF.
func DetectLineEnding(s string) LineEnding {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			return LF
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				return CRLF
			}
		}
	}
	return LF
}

// NormalizeLineEndings converts all line endings to LF: "\r\n" becomes "\n",
// then any bare "\r" becomes "\n". Matching and editing operate on this form.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// RestoreLineEndings converts LF-only content back to the detected style.
// The input must already be LF-normalized.
func RestoreLineEndings(s string, le LineEnding) string {
	if le == CRLF {
		return strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}
