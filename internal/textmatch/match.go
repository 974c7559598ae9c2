// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package textmatch locates edit targets in file content.
// match.go implements the exact-then-fuzzy unique-occurrence search.
package textmatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that neither exact nor fuzzy matching located the text.
var ErrNotFound = errors.New("text not found in content")

// AmbiguousError reports that the text occurs in more than one location, so
// a replacement cannot be applied without guessing.
type AmbiguousError struct {
	// Count is the number of occurrences found.
	Count int
	// Fuzzy is set when the ambiguity arose during the fuzzy fallback.
	Fuzzy bool
}

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	if e.Fuzzy {
		return fmt.Sprintf("text matches %d locations after fuzzy normalization", e.Count)
	}
	return fmt.Sprintf("text matches %d locations", e.Count)
}

// MatchResult describes a unique match. Offset and Length are byte indices
// into Buffer, which is the original content for exact matches and the
// fuzzy-normalized copy when UsedFuzzy is set.
type MatchResult struct {
	Found     bool
	Offset    int
	Length    int
	UsedFuzzy bool
	Buffer    string
}

// Find locates exactly one occurrence of needle in content. The exact search
// runs first; only when it finds nothing does the fuzzy fallback run, with
// both content and needle in their normalized comparison forms. Two or more
// occurrences in either pass fail as ambiguous rather than guessing.
//
// Content and needle must be LF-normalized (see NormalizeLineEndings).
func Find(content, needle string) (MatchResult, error) {
	if needle == "" {
		return MatchResult{}, ErrNotFound
	}

	switch n := strings.Count(content, needle); {
	case n == 1:
		return MatchResult{
			Found:  true,
			Offset: strings.Index(content, needle),
			Length: len(needle),
			Buffer: content,
		}, nil
	case n > 1:
		return MatchResult{}, &AmbiguousError{Count: n}
	}

	// Exact search found nothing; fall back to the normalized forms.
	normContent := NormalizeFuzzy(content)
	normNeedle := NormalizeFuzzy(needle)
	if normNeedle == "" {
		return MatchResult{}, ErrNotFound
	}

	switch n := strings.Count(normContent, normNeedle); {
	case n == 1:
		return MatchResult{
			Found:     true,
			Offset:    strings.Index(normContent, normNeedle),
			Length:    len(normNeedle),
			UsedFuzzy: true,
			Buffer:    normContent,
		}, nil
	case n > 1:
		return MatchResult{}, &AmbiguousError{Count: n, Fuzzy: true}
	}

	return MatchResult{}, ErrNotFound
}
