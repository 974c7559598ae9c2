// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package textmatch locates edit targets in file content, tolerating the
// ways model-quoted text drifts from what is on disk: byte-order marks,
// CRLF line endings, trailing whitespace, and typographic punctuation.
//
// # Key Types
//
//   - LineEnding: Detected dominant line-ending style (LF or CRLF)
//   - MatchResult: Location of a unique match and the buffer it indexes into
//   - AmbiguousError: More than one candidate location was found
//
// # Usage
//
// Normalize content once, then find the needle:
//
//	content, hadBOM := textmatch.StripBOM(raw)
//	ending := textmatch.DetectLineEnding(content)
//	content = textmatch.NormalizeLineEndings(content)
//	m, err := textmatch.Find(content, needle)
//
// Find tries an exact match first and falls back to fuzzy matching
// (per-line right-trim plus punctuation folding) only when the exact
// search finds nothing. Offsets in the result are valid only against
// m.Buffer, which is the fuzzy-normalized copy when m.UsedFuzzy is set.
package textmatch
