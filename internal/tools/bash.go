// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bash.go implements the bash tool. Commands run under "bash -c" in their
// own process group so cancellation kills the whole tree. Stdout streams
// in fixed-size chunks through the update callback; stderr drains on its
// own goroutine so a full pipe can never deadlock the read loop.

package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	// bashChunkSize is the stdout read granularity. Cancellation is polled
	// and the update callback fired once per chunk.
	bashChunkSize = 4096

	// bashMaxCapture bounds how much of each stream is retained in memory.
	// Past the cap the pipes are still drained so the child never blocks.
	bashMaxCapture = 1 << 20

	// bashCancelPoll is how often the watcher checks the cancellation flag
	// while the stdout loop is blocked on a silent child.
	bashCancelPoll = 100 * time.Millisecond
)

// execBash runs a shell command to completion, with no timeout. Only
// cancellation stops it early.
func execBash(ctx *Context) Result {
	command := ctx.GetString("command", "")
	// Screen a NFKC-folded copy so a command of exotic whitespace cannot
	// slip past the empty check. The original string is what executes.
	if strings.TrimSpace(norm.NFKC.String(command)) == "" {
		return errorResult("command is required")
	}

	if ctx.Cancelled() {
		return cancelResult()
	}

	cmd := exec.Command("bash", "-c", command)
	cmd.Dir = ctx.WorkDir
	setProcGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errorResult("failed to run command: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errorResult("failed to run command: %v", err)
	}

	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return errorResult("bash not found: install bash or ensure it is on PATH")
		}
		return errorResult("failed to run command: %v", err)
	}

	stderrCh := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(io.LimitReader(stderr, bashMaxCapture))
		_, _ = io.Copy(io.Discard, stderr)
		stderrCh <- buf
	}()

	// A silent child leaves the stdout loop blocked in Read, so the
	// in-loop poll alone cannot observe cancellation. The watcher kills
	// the process group, which unblocks the read with EOF.
	watcherDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(bashCancelPoll)
		defer ticker.Stop()
		for {
			select {
			case <-watcherDone:
				return
			case <-ticker.C:
				if ctx.Cancelled() {
					killProcGroup(cmd)
					return
				}
			}
		}
	}()

	var outBuf bytes.Buffer
	capped := false
	chunk := make([]byte, bashChunkSize)
	for {
		n, readErr := stdout.Read(chunk)
		if n > 0 {
			ctx.Update(string(chunk[:n]))
			if room := bashMaxCapture - outBuf.Len(); room > 0 {
				if n > room {
					n = room
					capped = true
				}
				outBuf.Write(chunk[:n])
			} else {
				capped = true
			}
		}
		if ctx.Cancelled() {
			killProcGroup(cmd)
			break
		}
		if readErr != nil {
			break
		}
	}

	stderrBytes := <-stderrCh
	waitErr := cmd.Wait()
	close(watcherDone)

	if ctx.Cancelled() {
		return cancelResult()
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return errorResult("command failed: %v", waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	combined := outBuf.String()
	if errText := string(stderrBytes); errText != "" {
		if combined != "" {
			combined += "\n--- stderr ---\n" + errText
		} else {
			combined = errText
		}
	}
	if exitCode != 0 {
		// Appended before truncation; tail-keep guarantees it survives.
		notice := fmt.Sprintf("Command exited with code %d", exitCode)
		if combined == "" {
			combined = notice
		} else {
			combined = strings.TrimSuffix(combined, "\n") + "\n" + notice
		}
	}

	out := TruncateTail(combined, ctx.budget)
	truncated := out.Truncated || capped

	spillPath := ""
	if truncated {
		if p, ok := ctx.Spill(combined); ok {
			spillPath = p
		}
	}

	if exitCode != 0 {
		return Result{
			Success:        false,
			ErrorMessage:   out.String(),
			Truncated:      truncated,
			FullOutputPath: spillPath,
		}
	}
	return Result{
		Success:        true,
		Content:        out.String(),
		Truncated:      truncated,
		FullOutputPath: spillPath,
	}
}
