// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured loggers used across the tool runner.
//
// Logs are JSON lines written to a file, never to stdout: stdout carries the
// service protocol and must stay clean. With no log file configured every
// component receives the Nop logger and logging costs nothing.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileLogger couples a logger with the handle that must be closed on exit.
type FileLogger struct {
	Logger  *slog.Logger
	Close   func() error
	Path    string
	Enabled bool
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// ParseLevel maps a config string to a slog level. Unknown values error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewFileLogger opens (or creates) a JSON log file at path. An empty path
// disables logging and returns the Nop logger with a no-op closer.
func NewFileLogger(path string, level slog.Level) (FileLogger, error) {
	nop := FileLogger{Logger: Nop(), Close: func() error { return nil }}
	if path == "" {
		return nop, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nop, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nop, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return FileLogger{
		Logger:  slog.New(handler),
		Close:   file.Close,
		Path:    path,
		Enabled: true,
	}, nil
}
