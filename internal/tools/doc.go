// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools implements the sandboxed tool-execution layer invoked by
// coding agents: file access (read_file, write_file, edit_file, list_dir),
// content and filename search (grep, glob), and shell execution (bash),
// dispatched by name through a Registry.
//
// # Key Types
//
//   - Registry: name-based dispatch, shared cancellation flag, builtins.
//   - Context: per-invocation argument bag, working directory, streaming
//     update callback. Created fresh for each call, never reused.
//   - Result: the uniform wire shape every tool returns. Failures are
//     reported inside the Result; no tool lets an error escape as a fault.
//
// # Usage
//
//	reg := tools.New(tools.Options{WorkDir: dir})
//	res := reg.Execute("read_file", map[string]interface{}{"path": "main.go"})
//	if !res.Success {
//		log.Println(res.ErrorMessage)
//	}
//
// Execution is serial: the registry never runs two tools concurrently.
// Cancel and ResetCancel flip an atomic flag that running tools poll at
// bounded points, so cancellation latency is proportional to chunk size,
// never assumed instantaneous.
package tools
