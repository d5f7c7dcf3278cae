// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring for CLI command handlers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/config"
	"github.com/jeranaias/reelcraft-tui/internal/localcache"
	"github.com/jeranaias/reelcraft-tui/internal/reconcile"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// Env bundles the configured backend pieces for a CLI command run.
type Env struct {
	Cfg        *config.Config
	Client     *remote.Client
	Cache      *localcache.Store
	Reconciler *reconcile.Reconciler
	UserID     string
}

// BuildEnv loads config, applies CLI overrides, and wires the stack.
func BuildEnv(args Args) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if args.BaseURL != "" {
		cfg.API.BaseURL = args.BaseURL
	}
	if args.User != "" {
		cfg.User.ID = args.User
	}

	client := remote.NewClient(cfg.API.Key).
		WithBaseURL(cfg.API.BaseURL).
		WithListTimeout(time.Duration(cfg.API.ListTimeoutSecs) * time.Second).
		WithMaxRetries(cfg.API.MaxRetries)

	var cache *localcache.Store
	if cfg.Cache.Dir != "" {
		cache, err = localcache.NewStoreWithDir(cfg.Cache.Dir)
	} else {
		cache, err = localcache.NewStore()
	}
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	return &Env{
		Cfg:        cfg,
		Client:     client,
		Cache:      cache,
		Reconciler: reconcile.New(client, cache),
		UserID:     cfg.User.ID,
	}, nil
}

// FetchEntries reconciles local and remote entries for CLI display.
// A plan-limit denial degrades to local entries with a notice on stderr.
func (e *Env) FetchEntries(ctx context.Context) []result.Entry {
	entries, err := e.Reconciler.Refresh(ctx, e.UserID)
	if errors.Is(err, remote.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "注意：目前方案不包含雲端儲存，僅顯示本機結果")
	}
	return entries
}

// findEntry locates an entry by id, trying a prefix match as a fallback so
// users can type the first few characters of a backend id.
func findEntry(entries []result.Entry, id string) (result.Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	for _, e := range entries {
		if len(id) >= 4 && len(e.ID) > len(id) && e.ID[:len(id)] == id {
			return e, true
		}
	}
	return result.Entry{}, false
}

// filterByCategory keeps entries of one category; empty keeps all.
func filterByCategory(entries []result.Entry, category string) ([]result.Entry, error) {
	if category == "" {
		return entries, nil
	}
	c, ok := result.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q (positioning, topics, planning, script)", category)
	}
	out := make([]result.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out, nil
}
