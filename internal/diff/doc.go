// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff renders line-aligned diffs for edit results.
//
// The renderer walks the old and new line sequences in lock-step. Equal
// lines advance silently; at a mismatch it emits leading context, the
// removed and added lines, and trailing context, realigning by scanning
// forward for a long enough run of equal lines. Every emitted line carries
// a right-aligned line number sized to the widest number in the file.
//
// # Usage
//
//	res := diff.Render(oldContent, newContent)
//	fmt.Print(res.Text)
//	if res.FirstChangedLine > 0 {
//		fmt.Println("first change at line", res.FirstChangedLine)
//	}
package diff
