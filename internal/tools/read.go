// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evmts/smithers-sub016/internal/util"
)

const (
	// readMaxFileBytes is the whole-file size cap.
	readMaxFileBytes = 1 << 20

	// readBinaryProbeBytes is how far into the file to look for NUL bytes.
	readBinaryProbeBytes = 4096

	// readMaxLineChars hard-cuts longer lines, without a notice.
	readMaxLineChars = 2000

	readDefaultLimit = 2000
	readMaxLimit     = 1_000_000
)

// execReadFile reads a text file and returns numbered lines.
func execReadFile(ctx *Context) Result {
	path := ctx.GetString("path", "")
	if path == "" {
		return errorResult("path is required")
	}
	offset := ctx.GetInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := ctx.GetInt("limit", readDefaultLimit)
	if limit <= 0 {
		limit = readDefaultLimit
	}
	if limit > readMaxLimit {
		limit = readMaxLimit
	}

	full := ctx.ResolvePath(path)
	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult("file not found: %s", path)
		}
		return errorResult("failed to open file: %v", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return errorResult("cannot access file: %v", err)
	}
	if info.IsDir() {
		return errorResult("path is a directory, use list_dir instead: %s", path)
	}
	if info.Size() > readMaxFileBytes {
		return errorResult("file too large: %d bytes (max %d). Read it in pieces with bash instead.",
			info.Size(), readMaxFileBytes)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return errorResult("failed to read file: %v", err)
	}

	probe := data
	if len(probe) > readBinaryProbeBytes {
		probe = probe[:readBinaryProbeBytes]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return errorResult("cannot read binary file: %s", path)
	}

	lines := splitPhysicalLines(string(data))
	total := len(lines)
	if offset >= total {
		return errorResult("offset %d is past the end of the file (%d lines total)", offset, total)
	}

	end := offset + limit
	if end > total {
		end = total
	}

	var b strings.Builder
	for i, line := range lines[offset:end] {
		if i%100 == 0 && ctx.Cancelled() {
			return cancelResult()
		}
		line = strings.TrimSuffix(line, "\r")
		line = util.CutRunes(line, readMaxLineChars)
		fmt.Fprintf(&b, "%6d\t%s\n", offset+i+1, line)
	}

	out := TruncateHead(b.String(), Budget{MaxLines: limit, MaxBytes: ctx.readMax})

	shown := out.OutputLines
	footer := "[more lines available]"
	if offset+shown >= total {
		footer = fmt.Sprintf("[end of file, %d lines total]", total)
	}

	content := out.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += footer

	return Result{
		Success:   true,
		Content:   content,
		Truncated: out.Truncated,
	}
}
