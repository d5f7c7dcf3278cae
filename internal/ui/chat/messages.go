// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
//
// This file defines all Bubble Tea message types used by the generation
// interface. Messages are organized into the following categories:
//   - Streaming: chunk delivery, render ticks, completion, and errors
//   - Entries: reconciliation, save, delete, rename, and export results
//   - UI State: config reload
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamChunkMsg delivers a new chunk from the stream.
type StreamChunkMsg struct {
	Content string
}

// StreamCompleteMsg signals that streaming has finished.
// Response carries the full accumulated text; Err is non-nil when the stream
// failed (Response then holds whatever arrived before the failure).
type StreamCompleteMsg struct {
	Response   string
	ChunkCount int
	Elapsed    time.Duration
	Err        error
}

// StreamTickMsg is sent at 30fps during streaming to batch render chunks.
// This prevents excessive rendering which causes flicker and high CPU.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// ENTRY MESSAGES
// =============================================================================

// EntriesRefreshedMsg delivers the reconciled entry list.
// Denied is true when the backend reported the user's plan does not include
// saved results; the list then holds local entries only.
type EntriesRefreshedMsg struct {
	Entries []result.Entry
	Denied  bool
}

// EntrySavedMsg confirms (or fails) a save of a local entry to the backend.
type EntrySavedMsg struct {
	LocalID   string
	BackendID string
	Denied    bool
	Err       error
}

// EntryDeletedMsg confirms (or fails) a delete.
type EntryDeletedMsg struct {
	ID  string
	Err error
}

// EntryRenamedMsg confirms (or fails) a rename of a confirmed entry.
// Rollback restores the previous title on failure.
type EntryRenamedMsg struct {
	ID       string
	Title    string
	Rollback func()
	Err      error
}

// ExportDoneMsg reports the outcome of an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// ConfigReloadedMsg signals that the config file changed on disk.
// Only presentation settings are applied live; connection settings take
// effect on restart.
type ConfigReloadedMsg struct {
	ThemeMode string
}
