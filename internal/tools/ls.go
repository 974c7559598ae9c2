// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// listDirMaxEntries caps the walk; it stops at the cap, not resumable.
	listDirMaxEntries = 500

	listDirMaxDepth = 3
)

// execListDir lists a directory as an indented tree. Children are visited
// depth-first in name order, directories suffixed "/", symlinks "@".
func execListDir(ctx *Context) Result {
	path := ctx.GetString("path", ".")
	depth := ctx.GetInt("depth", 1)
	if depth < 1 {
		depth = 1
	}
	if depth > listDirMaxDepth {
		depth = listDirMaxDepth
	}

	root := ctx.ResolvePath(path)
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult("directory not found: %s", path)
		}
		return errorResult("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return errorResult("not a directory: %s", path)
	}

	var b strings.Builder
	count := 0
	truncated, err := walkDirTree(ctx, &b, root, 0, depth, &count)
	if err != nil {
		return errorResult("failed to list directory: %v", err)
	}
	if ctx.Cancelled() {
		return cancelResult()
	}

	if count == 0 {
		return okResult("(empty directory)")
	}

	content := strings.TrimSuffix(b.String(), "\n")
	if truncated {
		content += fmt.Sprintf("\n[truncated at %d entries]", listDirMaxEntries)
	}

	return Result{
		Success:   true,
		Content:   content,
		Truncated: truncated,
	}
}

// walkDirTree emits one indented line per entry, depth-first. Returns true
// when the entry cap stopped the walk.
func walkDirTree(ctx *Context, b *strings.Builder, dir string, level, maxDepth int, count *int) (bool, error) {
	if ctx.Cancelled() {
		return false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// The root is reported to the caller; nested failures skip silently.
		if level == 0 {
			return false, err
		}
		return false, nil
	}

	for _, entry := range entries {
		if *count >= listDirMaxEntries {
			return true, nil
		}
		*count++

		name := entry.Name()
		suffix := ""
		switch {
		case entry.Type()&os.ModeSymlink != 0:
			suffix = "@"
		case entry.IsDir():
			suffix = "/"
		}
		b.WriteString(strings.Repeat("  ", level))
		b.WriteString(name)
		b.WriteString(suffix)
		b.WriteString("\n")

		// Symlinked directories are listed but never followed.
		if entry.IsDir() && entry.Type()&os.ModeSymlink == 0 && level+1 < maxDepth {
			truncated, err := walkDirTree(ctx, b, filepath.Join(dir, name), level+1, maxDepth, count)
			if truncated || err != nil {
				return truncated, err
			}
		}
	}
	return false, nil
}
