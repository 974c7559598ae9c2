// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// definitions.go declares the built-in tool set and its agent-facing
// descriptions. Execution logic lives in the per-tool files.

package tools

// builtins returns the built-in tool set.
func builtins() []*Tool {
	return []*Tool{
		readFileTool,
		writeFileTool,
		editFileTool,
		listDirTool,
		globTool,
		grepTool,
		bashTool,
	}
}

var readFileTool = &Tool{
	Name: "read_file",
	Description: `Read a text file and return its contents with line numbers (cat -n style).

Arguments:
- path (required): file to read, relative to the working directory or absolute
- offset: line number to start from, 0-based (default 0)
- limit: maximum lines to return (default 2000, max 1000000)

Binary files and files over 1MB are rejected. Lines longer than 2000
characters are cut. A footer reports whether more lines remain.`,
	Execute: execReadFile,
}

var writeFileTool = &Tool{
	Name: "write_file",
	Description: `Create a file or replace its contents entirely.

Arguments:
- path (required): file to write
- content (required): the complete new contents

Missing parent directories are created automatically. Existing content is
lost. For targeted changes to an existing file use edit_file instead.`,
	Execute: execWriteFile,
}

var editFileTool = &Tool{
	Name: "edit_file",
	Description: `Replace exactly one occurrence of old_str with new_str in a file.

Arguments:
- path (required): file to edit
- old_str (required): the text to find; must match exactly once
- new_str (required): the replacement text; must differ from old_str

Matching tolerates differences in line endings, trailing whitespace, and
typographic punctuation (curly quotes, dashes). If old_str matches more
than once the edit fails; include more surrounding context to make it
unique. Returns a rendered diff of the change.`,
	Execute: execEditFile,
}

var listDirTool = &Tool{
	Name: "list_dir",
	Description: `List directory contents as an indented tree.

Arguments:
- path: directory to list (default ".")
- depth: recursion depth, 1 to 3 (default 1)

Directories are suffixed with "/", symlinks with "@". Output is capped at
500 entries.`,
	Execute: execListDir,
}

var globTool = &Tool{
	Name: "glob",
	Description: `Find files by name pattern.

Arguments:
- pattern (required): e.g. "*.go", "**/*.ts", or a substring with "*" wildcards
- path: directory to search (default ".")

Returns matching file paths, up to 100. Use grep to search file contents.`,
	Execute: execGlob,
}

var grepTool = &Tool{
	Name: "grep",
	Description: `Search file contents for a regular expression.

Arguments:
- pattern (required): regex to search for
- path: file or directory to search (default ".")
- include: only search files matching this glob (e.g. "*.go")

Matches are grouped under per-file headers as "Line N: <text>", up to 100
matches. Use glob to find files by name.`,
	Execute: execGrep,
}

var bashTool = &Tool{
	Name: "bash",
	Description: `Run a shell command and return its combined output.

Arguments:
- command (required): the command string, executed via bash -c

Stdout streams incrementally. Stderr is appended under a "--- stderr ---"
marker. Output keeps the most recent lines within the budget; the full
output is spilled to a log file when truncated. A non-zero exit code fails
the call with the output in the error message.`,
	Execute: execBash,
}
