// smithers - sandboxed tool execution service for coding agents.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// service.go implements the line-oriented JSON protocol over stdin/stdout.
// The reader goroutine handles control ops inline so cancel works while a
// tool is in flight; tool executions are queued to a single worker, which
// keeps the execution contract serial.

package main

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/evmts/smithers-sub016/internal/history"
	"github.com/evmts/smithers-sub016/internal/tools"
)

const (
	// maxRequestBytes bounds one request line (write_file content arrives
	// inline in args).
	maxRequestBytes = 16 << 20

	// execQueueDepth is how many requests may pile up before the reader
	// applies backpressure. Callers wanting prompt cancellation should not
	// pipeline past this depth.
	execQueueDepth = 64
)

type execRequest struct {
	id   string
	tool string
	args map[string]interface{}
}

type resultMsg struct {
	ID     string       `json:"id"`
	Result tools.Result `json:"result"`
}

type updateMsg struct {
	ID     string `json:"id"`
	Update string `json:"update"`
}

type opAck struct {
	Op string `json:"op"`
	OK bool   `json:"ok"`
}

type errorMsg struct {
	Error string `json:"error"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// jsonWriter serializes line-JSON writes from the reader and the worker.
type jsonWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newJSONWriter(w io.Writer) *jsonWriter {
	return &jsonWriter{w: bufio.NewWriter(w)}
}

func (jw *jsonWriter) write(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if _, err := jw.w.Write(data); err != nil {
		return err
	}
	if err := jw.w.WriteByte('\n'); err != nil {
		return err
	}
	return jw.w.Flush()
}

// service runs the protocol loop against a registry.
type service struct {
	reg    *tools.Registry
	hist   *history.Store // nil disables the stats op
	log    *slog.Logger
	out    *jsonWriter
	execCh chan execRequest
	wg     sync.WaitGroup
}

func newService(reg *tools.Registry, hist *history.Store, log *slog.Logger, out io.Writer) *service {
	return &service{
		reg:    reg,
		hist:   hist,
		log:    log,
		out:    newJSONWriter(out),
		execCh: make(chan execRequest, execQueueDepth),
	}
}

// run consumes requests from r until EOF, then drains the queue.
func (s *service) run(r io.Reader) {
	s.wg.Add(1)
	go s.worker()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	for scanner.Scan() {
		s.handleLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("service.read_failed", slog.String("error", err.Error()))
	}

	close(s.execCh)
	s.wg.Wait()
}

// worker executes queued tool calls one at a time.
func (s *service) worker() {
	defer s.wg.Done()
	for req := range s.execCh {
		res := s.reg.ExecuteWithContext(req.tool, req.args, func(chunk string) {
			s.writeMsg(updateMsg{ID: req.id, Update: chunk})
		})
		s.writeMsg(resultMsg{ID: req.id, Result: res})
	}
}

func (s *service) handleLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if !gjson.Valid(line) {
		s.writeMsg(errorMsg{Error: "malformed request: not valid JSON"})
		return
	}
	req := gjson.Parse(line)

	if op := req.Get("op"); op.Exists() {
		s.handleOp(op.String())
		return
	}

	tool := req.Get("tool")
	if !tool.Exists() {
		s.writeMsg(errorMsg{Error: "malformed request: missing tool or op"})
		return
	}

	args := map[string]interface{}{}
	if m, ok := req.Get("args").Value().(map[string]interface{}); ok {
		args = m
	}
	s.execCh <- execRequest{
		id:   req.Get("id").String(),
		tool: tool.String(),
		args: args,
	}
}

// handleOp services control operations inline on the reader goroutine.
// Cancel and reset therefore take effect even while the worker is busy.
func (s *service) handleOp(op string) {
	switch op {
	case "cancel":
		s.reg.Cancel()
		s.log.Info("service.cancel")
		s.writeMsg(opAck{Op: "cancel", OK: true})
	case "reset_cancel":
		s.reg.ResetCancel()
		s.log.Info("service.reset_cancel")
		s.writeMsg(opAck{Op: "reset_cancel", OK: true})
	case "list_tools":
		names := s.reg.Tools()
		infos := make([]toolInfo, 0, len(names))
		for _, name := range names {
			infos = append(infos, toolInfo{
				Name:        name,
				Description: s.reg.Get(name).Description,
			})
		}
		s.writeMsg(map[string]interface{}{"tools": infos})
	case "stats":
		if s.hist == nil {
			s.writeMsg(errorMsg{Error: "stats unavailable: history store not configured"})
			return
		}
		st, err := s.hist.Stats()
		if err != nil {
			s.writeMsg(errorMsg{Error: "stats failed: " + err.Error()})
			return
		}
		s.writeMsg(map[string]interface{}{"stats": st})
	default:
		s.writeMsg(errorMsg{Error: "unknown op: " + op})
	}
}

func (s *service) writeMsg(v interface{}) {
	if err := s.out.write(v); err != nil {
		s.log.Error("service.write_failed", slog.String("error", err.Error()))
	}
}
