// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build unix

package tools

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBash_Echo(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{"command": "echo hello"})
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "hello\n", res.Content)
}

func TestBash_RunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "marker.txt", "here\n")
	reg := newTestRegistry(t, dir)

	res := reg.Execute("bash", map[string]interface{}{"command": "cat marker.txt"})
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "here\n", res.Content)
}

func TestBash_NonZeroExit(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{"command": "exit 3"})
	require.False(t, res.Success)
	assert.Empty(t, res.Content)
	assert.True(t, strings.HasSuffix(res.ErrorMessage, "Command exited with code 3"),
		"ErrorMessage = %q", res.ErrorMessage)
}

func TestBash_NonZeroExitKeepsOutput(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{
		"command": "echo before failing; exit 7",
	})
	require.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "before failing")
	assert.True(t, strings.HasSuffix(res.ErrorMessage, "Command exited with code 7"),
		"ErrorMessage = %q", res.ErrorMessage)
}

func TestBash_StderrCombined(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{
		"command": "echo out; echo err 1>&2",
	})
	require.True(t, res.Success, res.ErrorMessage)
	assert.Contains(t, res.Content, "out")
	assert.Contains(t, res.Content, "--- stderr ---")
	assert.Contains(t, res.Content, "err")
	assert.Less(t, strings.Index(res.Content, "out"), strings.Index(res.Content, "err"))
}

func TestBash_StderrOnly(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{"command": "echo oops 1>&2"})
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "oops\n", res.Content)
	assert.NotContains(t, res.Content, "--- stderr ---")
}

func TestBash_EmptyOutput(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{"command": "true"})
	require.True(t, res.Success, res.ErrorMessage)
	assert.Empty(t, res.Content)
}

func TestBash_StreamsChunks(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	var chunks []string
	res := reg.ExecuteWithContext("bash",
		map[string]interface{}{"command": "printf 'one '; printf two"},
		func(chunk string) { chunks = append(chunks, chunk) },
	)
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "one two", strings.Join(chunks, ""))
	assert.Equal(t, "one two", res.Content)
}

func TestBash_TruncatesAndSpills(t *testing.T) {
	spillDir := t.TempDir()
	reg := New(Options{
		WorkDir:  t.TempDir(),
		SpillDir: spillDir,
		MaxLines: 5,
		MaxBytes: 4096,
	})

	res := reg.Execute("bash", map[string]interface{}{"command": "seq 1 100"})
	require.True(t, res.Success, res.ErrorMessage)
	require.True(t, res.Truncated)
	assert.Contains(t, res.Content, "100", "tail-keep must keep the end")
	assert.NotContains(t, res.Content, "\n1\n", "tail-keep must drop the start")
	assert.Contains(t, res.Content, "[output truncated: showing last 5 of 100 lines]")

	require.NotEmpty(t, res.FullOutputPath)
	full, err := os.ReadFile(res.FullOutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(full), "1\n2\n"), "spill file holds the full output")
	assert.Contains(t, string(full), "\n100\n")
}

func TestBash_CancelKillsSilentChild(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	done := make(chan Result, 1)
	go func() {
		done <- reg.Execute("bash", map[string]interface{}{"command": "sleep 30"})
	}()

	time.Sleep(200 * time.Millisecond)
	reg.Cancel()

	select {
	case res := <-done:
		assert.False(t, res.Success)
		assert.Equal(t, "Cancelled", res.ErrorMessage)
	case <-time.After(10 * time.Second):
		t.Fatal("cancellation did not stop the command")
	}
}

func TestBash_CancelKillsProcessTree(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	done := make(chan Result, 1)
	go func() {
		// The grandchild sleep must die with the shell.
		done <- reg.Execute("bash", map[string]interface{}{
			"command": "bash -c 'sleep 30' & wait",
		})
	}()

	time.Sleep(200 * time.Millisecond)
	reg.Cancel()

	select {
	case res := <-done:
		assert.Equal(t, "Cancelled", res.ErrorMessage)
	case <-time.After(10 * time.Second):
		t.Fatal("process group kill did not reach the grandchild")
	}
}

func TestBash_MissingCommandArg(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir())

	res := reg.Execute("bash", map[string]interface{}{})
	require.False(t, res.Success)
	assert.Equal(t, "command is required", res.ErrorMessage)
}
