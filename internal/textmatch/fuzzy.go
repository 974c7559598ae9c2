// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package textmatch locates edit targets in file content.
// fuzzy.go builds the normalized comparison form used by the fuzzy fallback.
package textmatch

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// punctFold maps the typographic punctuation models commonly emit onto the
// ASCII characters found in source files. Applied left to right, rune by rune.
var punctFold = runes.Map(func(r rune) rune {
	switch r {
	case '‘', '’': // curly single quotes
		return '\''
	case '“', '”': // curly double quotes
		return '"'
	case '–', '—', '−': // en dash, em dash, minus sign
		return '-'
	case ' ': // non-breaking space
		return ' '
	}
	return r
})

// NormalizeFuzzy builds the comparison copy of LF-normalized content: each
// line is right-trimmed of trailing spaces and tabs, then typographic
// punctuation is folded to ASCII. Offsets found in this form are valid only
// against this form.
func NormalizeFuzzy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if folded, _, err := transform.String(punctFold, line); err == nil {
			line = folded
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
