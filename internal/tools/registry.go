// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// registry.go implements name-based dispatch and the shared cancellation flag.

package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/evmts/smithers-sub016/internal/history"
	"github.com/evmts/smithers-sub016/internal/logging"
)

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// ExecFunc runs one tool invocation. Every code path returns a Result;
// failures never escape as faults.
type ExecFunc func(ctx *Context) Result

// Tool is a named operation invocable through the registry. Tools are
// stateless and registered once.
type Tool struct {
	// Name is the dispatch identifier (e.g. "read_file").
	Name string

	// Description explains the tool to the calling agent.
	Description string

	// Execute handles the invocation.
	Execute ExecFunc
}

// Recorder persists execution records. *history.Store satisfies it.
type Recorder interface {
	Record(e history.Execution) error
}

// =============================================================================
// OPTIONS
// =============================================================================

// Output budget defaults.
const (
	DefaultMaxLines     = 2000
	DefaultMaxBytes     = 50 * 1024
	DefaultReadMaxBytes = 256 * 1024
)

// Options configure a Registry. Zero fields take defaults.
type Options struct {
	// WorkDir is the directory relative tool paths resolve against.
	WorkDir string

	// SpillDir receives untruncated output files. Empty disables spilling.
	SpillDir string

	// RgPath is the external search binary used by grep and glob.
	RgPath string

	// MaxLines and MaxBytes bound truncated tool output.
	MaxLines int
	MaxBytes int

	// ReadMaxBytes bounds read_file output independently of MaxBytes.
	ReadMaxBytes int

	// Log receives execution events.
	Log *slog.Logger

	// Recorder persists execution records. Nil disables recording.
	Recorder Recorder
}

func (o *Options) fillDefaults() {
	if o.WorkDir == "" {
		o.WorkDir = "."
	}
	if o.RgPath == "" {
		o.RgPath = "rg"
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.ReadMaxBytes <= 0 {
		o.ReadMaxBytes = DefaultReadMaxBytes
	}
	if o.Log == nil {
		o.Log = logging.Nop()
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry dispatches tool calls by name. The service contract is serial
// execution, one call in flight at a time, though dispatch itself tolerates
// concurrent callers: the tool table is not mutated after setup and the
// shared state, the cancellation flag and the options snapshot, is atomic.
// The flag may be raised from another goroutine while a call is in flight
// and is polled cooperatively by running tools.
type Registry struct {
	tools     map[string]*Tool
	cancelled atomic.Bool
	opts      atomic.Pointer[Options]
}

// New creates a registry with the built-in tools registered.
func New(opts Options) *Registry {
	r := &Registry{tools: make(map[string]*Tool)}
	for _, t := range builtins() {
		r.tools[t.Name] = t
	}
	r.SetOptions(opts)
	return r
}

// SetOptions replaces the registry configuration. Safe to call while a
// tool is executing; the in-flight call keeps its snapshot.
func (r *Registry) SetOptions(opts Options) {
	opts.fillDefaults()
	r.opts.Store(&opts)
}

// Register adds a tool. Registering a name twice is an error. Register is
// a setup-time call: it must not run concurrently with Execute.
func (r *Registry) Register(tool *Tool) error {
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get retrieves a tool by name, or nil.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Tools returns the registered tool names, sorted.
func (r *Registry) Tools() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cancel raises the shared cancellation flag. All current and future
// invocations observe it until ResetCancel.
func (r *Registry) Cancel() {
	r.cancelled.Store(true)
}

// ResetCancel lowers the cancellation flag.
func (r *Registry) ResetCancel() {
	r.cancelled.Store(false)
}

// IsCancelled reports the state of the cancellation flag.
func (r *Registry) IsCancelled() bool {
	return r.cancelled.Load()
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute runs a tool call and returns the result.
func (r *Registry) Execute(name string, args map[string]interface{}) Result {
	return r.ExecuteWithContext(name, args, nil)
}

// ExecuteWithContext runs a tool call, wiring a streaming-update callback
// invoked with partial output as it becomes available.
func (r *Registry) ExecuteWithContext(name string, args map[string]interface{}, onUpdate func(chunk string)) Result {
	opts := r.opts.Load()
	start := time.Now()
	id := uuid.NewString()

	var result Result
	switch {
	case r.cancelled.Load():
		result = cancelResult()
	case r.tools[name] == nil:
		result = errorResult("Unknown tool: %s", name)
	default:
		ctx := &Context{
			Args:      args,
			WorkDir:   opts.WorkDir,
			OnUpdate:  onUpdate,
			cancelled: &r.cancelled,
			budget:    Budget{MaxLines: opts.MaxLines, MaxBytes: opts.MaxBytes},
			readMax:   opts.ReadMaxBytes,
			spillDir:  opts.SpillDir,
			rgPath:    opts.RgPath,
			log:       opts.Log,
		}
		result = r.tools[name].Execute(ctx)
	}

	duration := time.Since(start)
	opts.Log.Info("tool.execute",
		slog.String("tool", name),
		slog.String("id", id),
		slog.Bool("success", result.Success),
		slog.Bool("truncated", result.Truncated),
		slog.Duration("duration", duration),
	)

	if opts.Recorder != nil {
		if err := opts.Recorder.Record(history.Execution{
			ID:         id,
			Tool:       name,
			ArgsJSON:   marshalArgs(args),
			Success:    result.Success,
			Error:      result.ErrorMessage,
			Truncated:  result.Truncated,
			DurationMS: duration.Milliseconds(),
			StartedAt:  start,
		}); err != nil {
			opts.Log.Warn("tool.record_failed",
				slog.String("tool", name),
				slog.String("error", err.Error()),
			)
		}
	}

	return result
}

func marshalArgs(args map[string]interface{}) string {
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
