// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
//
// This file implements streaming optimization for smooth, flicker-free
// rendering while the backend streams a response. The StreamingBuffer batches
// chunks for rendering at a capped frame rate; chunks are appended to the
// transcript strictly in the order they arrive.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/reelcraft-tui/internal/remote"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches chunks for efficient rendering.
// Chunks are accumulated and flushed either when:
// 1. The batch size threshold is reached
// 2. Enough time has passed since the last flush (33ms for 30fps)
//
// Thread-safety: all operations are protected by a mutex since chunks arrive
// on a goroutine while rendering happens in the main Bubble Tea loop.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	chunkCount int
	lastFlush  time.Time

	batchSize  int
	minFlushMs time.Duration
}

// NewStreamingBuffer creates a streaming buffer with default settings:
// batches of 15 chunks, flushed at most 30 times per second.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(15, 30)
}

// NewStreamingBufferWithConfig creates a streaming buffer with custom settings.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &StreamingBuffer{
		batchSize:  batchSize,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush:  time.Now(),
	}
}

// Write adds a chunk to the buffer. Called from the streaming goroutine.
func (sb *StreamingBuffer) Write(chunk string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(chunk)
	sb.chunkCount++
}

// Flush returns accumulated content if either the size or the time threshold
// has been reached. Called from the main Bubble Tea loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.shouldFlushLocked() {
		return "", false
	}
	return sb.drainLocked()
}

// ForceFlush immediately flushes all buffered content regardless of
// thresholds. Use this when a stream completes so no trailing chunks are lost.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.drainLocked()
}

// Reset clears the buffer without flushing. Use when canceling a stream.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.chunkCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of chunks waiting to be flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.chunkCount
}

// shouldFlushLocked checks flush conditions. Caller must hold the lock.
func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.chunkCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

// drainLocked extracts content and resets the buffer. Caller must hold the lock.
func (sb *StreamingBuffer) drainLocked() (string, bool) {
	if sb.buffer.Len() == 0 {
		return "", false
	}
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.chunkCount = 0
	sb.lastFlush = time.Now()
	return content, true
}

// =============================================================================
// STREAMING COMMANDS
// =============================================================================

// streamTickCmd creates a tea.Cmd that sends StreamTickMsg at 30fps.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// waitForChunk returns a command that blocks on the chunk channel and
// converts the next chunk (or the stream's end) into a Bubble Tea message.
// Re-issued from Update after every StreamChunkMsg so chunks are delivered
// strictly in receipt order.
func waitForChunk(chunks <-chan remote.Chunk, errs <-chan error, acc *remote.Accumulator) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-chunks
		if !ok {
			err := <-errs
			return StreamCompleteMsg{
				Response:   acc.GetContent(),
				ChunkCount: acc.ChunkCount,
				Elapsed:    acc.Elapsed(),
				Err:        err,
			}
		}
		acc.Add(chunk)
		// Done markers carry no renderable text; the empty message keeps the
		// pump alive until the channel closes.
		return StreamChunkMsg{Content: chunk.Content}
	}
}
