// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// truncate.go implements the byte/line-budgeted output truncation policies.

package tools

import (
	"fmt"
	"strings"
)

// Budget bounds tool output. Line and byte budgets are independent;
// whichever is hit first stops collection.
type Budget struct {
	MaxLines int
	MaxBytes int
}

// Truncation is the outcome of applying a Budget to output text.
type Truncation struct {
	// Content is the kept window. Equal to the input when nothing was cut.
	Content string

	// Truncated indicates lines were dropped to fit the budget.
	Truncated bool

	// TotalLines is the number of physical lines in the full output.
	TotalLines int

	// OutputLines is the number of physical lines kept.
	OutputLines int

	keep string // "first" or "last"
}

// TruncateHead keeps the first lines of content that fit the budget.
// Used where the interesting output sits at the start (file reads,
// paginated forward via offset). A physical line is never split.
func TruncateHead(content string, budget Budget) Truncation {
	lines := splitPhysicalLines(content)
	kept := 0
	used := 0
	for _, line := range lines {
		cost := len(line) + 1
		if kept >= budget.MaxLines || used+cost > budget.MaxBytes {
			break
		}
		kept++
		used += cost
	}

	t := Truncation{
		TotalLines:  len(lines),
		OutputLines: kept,
		keep:        "first",
	}
	if kept == len(lines) {
		t.Content = content
		return t
	}
	t.Truncated = true
	t.Content = strings.Join(lines[:kept], "\n")
	return t
}

// TruncateTail keeps the last lines of content that fit the budget.
// Used where failures surface at the end (shell output).
func TruncateTail(content string, budget Budget) Truncation {
	lines := splitPhysicalLines(content)
	kept := 0
	used := 0
	for i := len(lines) - 1; i >= 0; i-- {
		cost := len(lines[i]) + 1
		if kept >= budget.MaxLines || used+cost > budget.MaxBytes {
			break
		}
		kept++
		used += cost
	}

	t := Truncation{
		TotalLines:  len(lines),
		OutputLines: kept,
		keep:        "last",
	}
	if kept == len(lines) {
		t.Content = content
		return t
	}
	t.Truncated = true
	t.Content = strings.Join(lines[len(lines)-kept:], "\n")
	return t
}

// Notice returns the human-readable truncation notice.
func (t Truncation) Notice() string {
	return fmt.Sprintf("[output truncated: showing %s %d of %d lines]",
		t.keep, t.OutputLines, t.TotalLines)
}

// String returns the kept content with the notice appended when truncated.
func (t Truncation) String() string {
	if !t.Truncated {
		return t.Content
	}
	if t.Content == "" {
		return t.Notice()
	}
	return t.Content + "\n" + t.Notice()
}

// splitPhysicalLines splits content into physical lines. A trailing line
// terminator does not produce an empty final line.
func splitPhysicalLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
