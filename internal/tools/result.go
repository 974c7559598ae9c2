// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"
	"fmt"
)

// Result holds the outcome of a tool execution.
//
// Invariants: Success == false implies Content is empty and ErrorMessage is
// set; Truncated == true implies Content is a budget-bounded prefix or
// suffix of the full output, never a mid-line fragment.
type Result struct {
	// Success indicates whether the tool completed without error.
	Success bool `json:"success"`

	// Content is the tool's output. Empty on failure.
	Content string `json:"content"`

	// ErrorMessage describes the failure. Cancellation uses the literal
	// message "Cancelled".
	ErrorMessage string `json:"error_message,omitempty"`

	// Truncated indicates Content is a bounded window of the full output.
	Truncated bool `json:"truncated,omitempty"`

	// FullOutputPath points at a spill file holding the untruncated output.
	FullOutputPath string `json:"full_output_path,omitempty"`

	// DetailsJSON is a structured side-channel payload (edit_file attaches
	// the rendered diff and first changed line here).
	DetailsJSON json.RawMessage `json:"details_json,omitempty"`
}

// okResult builds a successful result with the given content.
func okResult(content string) Result {
	return Result{Success: true, Content: content}
}

// errorResult builds a failed result with a formatted message.
func errorResult(format string, args ...interface{}) Result {
	return Result{Success: false, ErrorMessage: fmt.Sprintf(format, args...)}
}

// cancelResult is the canonical result for a cancelled invocation.
func cancelResult() Result {
	return Result{Success: false, ErrorMessage: "Cancelled"}
}
