// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package tools

import "os/exec"

func setProcGroup(cmd *exec.Cmd) {}

// killProcGroup kills the immediate child. Process groups are a Unix
// concept; grandchildren may survive here.
func killProcGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
