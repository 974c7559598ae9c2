// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context carries the per-invocation state handed to a tool: the decoded
// argument bag, the working directory, the optional streaming-update
// callback, and a view of the registry's shared cancellation flag. A
// Context is created fresh for each call and never persists.
type Context struct {
	// Args is the decoded JSON argument object for this call.
	Args map[string]interface{}

	// WorkDir is the directory relative paths resolve against.
	WorkDir string

	// OnUpdate receives partial output as it becomes available. Nil when
	// the caller did not request streaming.
	OnUpdate func(chunk string)

	cancelled *atomic.Bool
	budget    Budget
	readMax   int
	spillDir  string
	rgPath    string
	log       *slog.Logger
}

// Cancelled reports whether the shared cancellation flag is raised. Tools
// poll this at bounded points: loop iterations, pre-spawn, per chunk.
func (c *Context) Cancelled() bool {
	return c.cancelled != nil && c.cancelled.Load()
}

// Update delivers a chunk of partial output to the streaming callback.
func (c *Context) Update(chunk string) {
	if c.OnUpdate != nil {
		c.OnUpdate(chunk)
	}
}

// ResolvePath resolves a path argument against the working directory.
func (c *Context) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.WorkDir, path)
}

// GetString extracts a string argument with a default value.
func (c *Context) GetString(name, defaultVal string) string {
	if val, ok := c.Args[name]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetInt extracts an integer argument with a default value. JSON numbers
// decode as float64, so all numeric shapes are accepted.
func (c *Context) GetInt(name string, defaultVal int) int {
	if val, ok := c.Args[name]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultVal
}

// GetBool extracts a boolean argument with a default value.
func (c *Context) GetBool(name string, defaultVal bool) bool {
	if val, ok := c.Args[name]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// Has reports whether an argument was provided at all, distinguishing a
// missing argument from an explicit empty value.
func (c *Context) Has(name string) bool {
	_, ok := c.Args[name]
	return ok
}

// Spill writes untruncated output to a uniquely named file in the spill
// directory and returns its path. Spilling is best-effort: failures are
// logged and reported as absent, never as a tool error.
func (c *Context) Spill(content string) (string, bool) {
	if c.spillDir == "" {
		return "", false
	}
	if err := os.MkdirAll(c.spillDir, 0755); err != nil {
		c.log.Warn("tool.spill_failed", slog.String("error", err.Error()))
		return "", false
	}
	path := filepath.Join(c.spillDir, uuid.NewString()+".log")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		c.log.Warn("tool.spill_failed", slog.String("error", err.Error()))
		return "", false
	}
	return path, true
}
