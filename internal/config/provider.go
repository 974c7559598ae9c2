// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// smithers tool runner.
// provider.go publishes immutable config snapshots to running components.
package config

import "sync/atomic"

// Provider hands out the current configuration snapshot. Snapshots are
// immutable once published; the watcher swaps in a fresh one on reload, so
// a tool reads consistent budgets for the duration of one call.
type Provider struct {
	cur atomic.Pointer[Config]
}

// NewProvider creates a provider publishing cfg.
func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.cur.Store(cfg)
	return p
}

// Current returns the latest published snapshot.
func (p *Provider) Current() *Config {
	return p.cur.Load()
}

// Swap publishes a new snapshot.
func (p *Provider) Swap(cfg *Config) {
	p.cur.Store(cfg)
}
