// smithers - sandboxed tool execution service for coding agents.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/evmts/smithers-sub016/internal/config"
	"github.com/evmts/smithers-sub016/internal/history"
	"github.com/evmts/smithers-sub016/internal/logging"
	"github.com/evmts/smithers-sub016/internal/tools"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (watched for changes)")
	workDir := flag.String("workdir", "", "working directory override")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("smithers %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *workDir != "" {
		cfg.Runner.WorkDir = *workDir
	}

	level, err := logging.ParseLevel(cfg.Runner.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fl, err := logging.NewFileLogger(cfg.Runner.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer fl.Close()
	log := fl.Logger

	// History is supplementary: an unopenable store degrades to no
	// recording rather than refusing to serve.
	var hist *history.Store
	var recorder tools.Recorder
	if cfg.Runner.HistoryDB != "" {
		hist, err = history.Open(cfg.Runner.HistoryDB)
		if err != nil {
			log.Warn("history.open_failed",
				slog.String("path", cfg.Runner.HistoryDB),
				slog.String("error", err.Error()),
			)
			hist = nil
		} else {
			defer hist.Close()
			if err := hist.Prune(history.DefaultRetention); err != nil {
				log.Warn("history.prune_failed", slog.String("error", err.Error()))
			}
			recorder = hist
		}
	}

	provider := config.NewProvider(cfg)
	reg := tools.New(toolOptions(provider.Current(), log, recorder))

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, 0, log, func(next *config.Config) {
			if *workDir != "" {
				next.Runner.WorkDir = *workDir
			}
			provider.Swap(next)
			reg.SetOptions(toolOptions(provider.Current(), log, recorder))
		})
		if err != nil {
			log.Warn("config.watch_failed", slog.String("error", err.Error()))
		} else if err := watcher.Watch(); err != nil {
			log.Warn("config.watch_failed", slog.String("error", err.Error()))
			watcher.Close()
		} else {
			defer watcher.Close()
		}
	}

	log.Info("service.start",
		slog.String("version", Version),
		slog.String("workdir", cfg.Runner.WorkDir),
	)

	svc := newService(reg, hist, log, os.Stdout)
	svc.run(os.Stdin)

	log.Info("service.stop")
}

// toolOptions maps a config snapshot onto registry options.
func toolOptions(cfg *config.Config, log *slog.Logger, recorder tools.Recorder) tools.Options {
	return tools.Options{
		WorkDir:      cfg.Runner.WorkDir,
		SpillDir:     cfg.Runner.SpillDir,
		RgPath:       cfg.Search.RgPath,
		MaxLines:     cfg.Output.MaxLines,
		MaxBytes:     cfg.Output.MaxBytes,
		ReadMaxBytes: cfg.Output.ReadMaxBytes,
		Log:          log,
		Recorder:     recorder,
	}
}
