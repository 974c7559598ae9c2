// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evmts/smithers-sub016/internal/util"
)

// execWriteFile creates a file or replaces its contents entirely.
func execWriteFile(ctx *Context) Result {
	path := ctx.GetString("path", "")
	if path == "" {
		return errorResult("path is required")
	}
	if !ctx.Has("content") {
		return errorResult("content is required")
	}
	content := ctx.GetString("content", "")

	// Poll before touching the filesystem so a raised flag leaves no
	// side effects.
	if ctx.Cancelled() {
		return cancelResult()
	}

	full := ctx.ResolvePath(path)
	if dir := filepath.Dir(full); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil && !os.IsExist(err) {
			return errorResult("failed to create parent directory: %v", err)
		}
	}

	if err := util.AtomicWriteFile(full, []byte(content), 0644); err != nil {
		return errorResult("failed to write file: %v", err)
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("Wrote %d bytes to %s", len(content), path),
	}
}
