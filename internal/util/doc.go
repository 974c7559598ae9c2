// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides string and file helpers for the smithers tool runner.
//
// String helpers are UTF-8 safe: TruncateRunes cuts by character count,
// TruncateDisplay by terminal display width (go-runewidth, so CJK counts
// as two columns). AtomicWriteFile writes files crash-safely via a
// temp-file-and-rename with fsync.
package util
