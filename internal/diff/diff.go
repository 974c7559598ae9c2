// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff renders line-aligned diffs for edit results.
// diff.go implements the lock-step walker and line formatting.
package diff

import (
	"fmt"
	"strings"
)

// contextLines is how many equal lines surround each change block.
const contextLines = 4

// Result is a rendered diff. FirstChangedLine is the 1-based line number of
// the first divergence in the new content, or 0 when the contents are
// identical (in which case Text is empty).
type Result struct {
	Text             string
	FirstChangedLine int
}

// Render produces a line-aligned diff between oldText and newText.
//
// Equal lines advance both sequences silently. At a mismatch the walker
// emits up to contextLines of leading context, the divergent old lines
// prefixed "-" and new lines prefixed "+", then up to contextLines of
// trailing context. Realignment is found by a forward scan for
// 2*contextLines consecutive equal lines (or the common tail reaching the
// end of both sequences). Removed lines carry old line numbers; context and
// added lines carry new line numbers, right-aligned to the widest number.
func Render(oldText, newText string) Result {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	width := numberWidth(maxInt(len(oldLines), len(newLines)))

	var b strings.Builder
	first := 0
	i, j := 0, 0
	runLen := 0 // equal lines immediately behind (i, j)

	emit := func(num int, marker, text string) {
		fmt.Fprintf(&b, "%*d %s %s\n", width, num, marker, text)
	}

	emitBlock := func(removed, added int) {
		for k := minInt(contextLines, runLen); k > 0; k-- {
			emit(j-k+1, " ", newLines[j-k])
		}
		for k := 0; k < removed; k++ {
			emit(i+k+1, "-", oldLines[i+k])
		}
		for k := 0; k < added; k++ {
			emit(j+k+1, "+", newLines[j+k])
		}
		i += removed
		j += added
		runLen = 0
		for runLen < contextLines && i < len(oldLines) && j < len(newLines) && oldLines[i] == newLines[j] {
			emit(j+1, " ", newLines[j])
			i++
			j++
			runLen++
		}
	}

	for i < len(oldLines) && j < len(newLines) {
		if oldLines[i] == newLines[j] {
			i++
			j++
			runLen++
			continue
		}
		if first == 0 {
			first = j + 1
		}
		removed, added := scanRealign(oldLines, newLines, i, j)
		emitBlock(removed, added)
	}

	// Leftover tail on one side is a final change block.
	if i < len(oldLines) || j < len(newLines) {
		if first == 0 {
			first = j + 1
		}
		emitBlock(len(oldLines)-i, len(newLines)-j)
	}

	return Result{Text: b.String(), FirstChangedLine: first}
}

// scanRealign finds the smallest advance (removed, added) from the mismatch
// at (i, j) to a position where the sequences realign: either
// 2*contextLines consecutive equal lines, or a common equal tail that
// exhausts both sequences. Smaller total advances win; ties prefer fewer
// removed lines.
func scanRealign(oldLines, newLines []string, i, j int) (removed, added int) {
	maxAdvance := (len(oldLines) - i) + (len(newLines) - j)
	for d := 1; d <= maxAdvance; d++ {
		for a := 0; a <= d; a++ {
			b := d - a
			if i+a > len(oldLines) || j+b > len(newLines) {
				continue
			}
			if realigned(oldLines, newLines, i+a, j+b) {
				return a, b
			}
		}
	}
	return len(oldLines) - i, len(newLines) - j
}

// realigned reports whether the sequences are in step again at (x, y).
func realigned(oldLines, newLines []string, x, y int) bool {
	run := 0
	for x+run < len(oldLines) && y+run < len(newLines) && oldLines[x+run] == newLines[y+run] {
		run++
		if run >= 2*contextLines {
			return true
		}
	}
	// A shorter run still realigns when it is the common tail of both.
	return x+run == len(oldLines) && y+run == len(newLines)
}

// splitLines splits content into lines, treating a trailing newline as a
// terminator rather than the start of an extra empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// numberWidth returns the digit count of the largest line number.
func numberWidth(n int) int {
	if n < 1 {
		return 1
	}
	w := 0
	for n > 0 {
		w++
		n /= 10
	}
	return w
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
