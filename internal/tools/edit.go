// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// edit.go implements the edit_file tool: locate exactly one occurrence of
// old_str (exact first, fuzzy fallback), splice in new_str, and write the
// file back with its original BOM and line endings. The file is only
// touched after every step has succeeded in memory.

package tools

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/tidwall/sjson"

	"github.com/evmts/smithers-sub016/internal/diff"
	"github.com/evmts/smithers-sub016/internal/textmatch"
	"github.com/evmts/smithers-sub016/internal/util"
)

// execEditFile replaces one occurrence of old_str with new_str in a file.
func execEditFile(ctx *Context) Result {
	path := ctx.GetString("path", "")
	if path == "" {
		return errorResult("path is required")
	}
	oldStr := ctx.GetString("old_str", "")
	if oldStr == "" {
		return errorResult("old_str is required")
	}
	if !ctx.Has("new_str") {
		return errorResult("new_str is required")
	}
	newStr := ctx.GetString("new_str", "")
	if oldStr == newStr {
		return errorResult("old_str and new_str are identical")
	}

	if ctx.Cancelled() {
		return cancelResult()
	}

	full := ctx.ResolvePath(path)
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult("file not found: %s", path)
		}
		return errorResult("failed to read file: %v", err)
	}
	if info.IsDir() {
		return errorResult("path is a directory: %s", path)
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		return errorResult("failed to read file: %v", err)
	}

	content, hadBOM := textmatch.StripBOM(string(raw))
	ending := textmatch.DetectLineEnding(content)
	content = textmatch.NormalizeLineEndings(content)
	oldStr = textmatch.NormalizeLineEndings(oldStr)
	newStr = textmatch.NormalizeLineEndings(newStr)

	m, err := textmatch.Find(content, oldStr)
	if err != nil {
		var amb *textmatch.AmbiguousError
		if errors.As(err, &amb) {
			return errorResult("old_str matches %d locations in %s; provide more context to disambiguate",
				amb.Count, path)
		}
		return errorResult("old_str not found in %s (tried exact and fuzzy matching)", path)
	}

	// Splice against m.Buffer, not content: after a fuzzy match the offsets
	// are only valid in the normalized copy.
	newContent := m.Buffer[:m.Offset] + newStr + m.Buffer[m.Offset+m.Length:]
	if newContent == m.Buffer {
		return errorResult("edit produces no change to %s", path)
	}

	d := diff.Render(m.Buffer, newContent)

	final := textmatch.RestoreLineEndings(newContent, ending)
	if hadBOM {
		final = textmatch.AddBOM(final)
	}
	if err := util.AtomicWriteFile(full, []byte(final), info.Mode().Perm()); err != nil {
		return errorResult("failed to write file: %v", err)
	}

	details, _ := sjson.Set("{}", "diff", d.Text)
	details, _ = sjson.Set(details, "first_changed_line", d.FirstChangedLine)

	return Result{
		Success:     true,
		Content:     "Edited " + path,
		DetailsJSON: json.RawMessage(details),
	}
}
