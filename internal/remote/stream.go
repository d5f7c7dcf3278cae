// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxChunkSize is the maximum allowed size for a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// =============================================================================
// STREAMING TYPES
// =============================================================================

// GenerateRequest is a request to the streaming generation endpoint.
type GenerateRequest struct {
	Prompt string `json:"prompt"`

	// History carries prior turns so the backend keeps the conversation
	// thread; oldest first.
	History []Turn `json:"history,omitempty"`

	// CategoryHint optionally tells the backend which product the user is
	// asking for. The backend may ignore it.
	CategoryHint string `json:"category_hint,omitempty"`
}

// Turn is a single prior exchange in the generation conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Chunk is a single piece of a streaming generation response.
type Chunk struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// IsDone returns true if the stream has finished.
func (c *Chunk) IsDone() bool {
	return c.FinishReason != ""
}

// ChunkCallback is called for each received chunk.
type ChunkCallback func(chunk Chunk)

// StreamError is an error that occurred mid-stream, preserving any partial
// content received before the failure so the UI can keep what it showed.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next SSE event. Returns the event type, the joined
// data payload, and any error. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	var size int

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		size += len(line)
		if size > MaxChunkSize {
			return "", nil, fmt.Errorf("event too large: %d bytes", size)
		}

		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Ignore other fields (id:, retry:, comments starting with :).
	}
}

// =============================================================================
// STREAMING GENERATION
// =============================================================================

// GenerateStream performs a streaming generation request, invoking callback
// for each chunk. The stream lifetime is controlled by ctx; cancel it to
// abort generation.
func (c *Client) GenerateStream(ctx context.Context, req *GenerateRequest, callback ChunkCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := sharedStreamingClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return c.handleErrorResponse(resp, body)
	}

	return c.processStream(ctx, resp.Body, callback)
}

// processStream reads and processes the SSE stream.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback ChunkCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk Chunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks rather than aborting the stream.
			continue
		}

		callback(chunk)

		if chunk.IsDone() {
			return nil
		}
	}
}

// GenerateStreamChan performs a streaming generation and delivers chunks on
// a channel. Both channels are closed when the stream ends; a terminal
// error, if any, arrives on the error channel first.
func (c *Client) GenerateStreamChan(ctx context.Context, req *GenerateRequest) (<-chan Chunk, <-chan error) {
	chunkChan := make(chan Chunk, 64)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		var accumulated strings.Builder
		err := c.GenerateStream(ctx, req, func(chunk Chunk) {
			accumulated.WriteString(chunk.Content)
			select {
			case chunkChan <- chunk:
			case <-ctx.Done():
			}
		})

		if err != nil {
			if accumulated.Len() > 0 && !errors.Is(err, context.Canceled) {
				err = &StreamError{Partial: accumulated.String(), Err: err}
			}
			select {
			case errChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	return chunkChan, errChan
}

// GenerateAccumulate performs a streaming generation and returns the
// complete response at the end. Partial content is returned alongside the
// error when the stream fails mid-way.
func (c *Client) GenerateAccumulate(ctx context.Context, req *GenerateRequest) (string, error) {
	var accumulated strings.Builder

	err := c.GenerateStream(ctx, req, func(chunk Chunk) {
		accumulated.WriteString(chunk.Content)
	})

	if err != nil {
		var streamErr *StreamError
		if errors.As(err, &streamErr) && streamErr.Partial != "" {
			return streamErr.Partial, err
		}
		return accumulated.String(), err
	}
	return accumulated.String(), nil
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// Accumulator collects streaming chunks and builds a complete response,
// tracking basic timing statistics along the way.
type Accumulator struct {
	Content      strings.Builder
	ChunkCount   int
	FinishReason string
	StartTime    time.Time
	FirstChunkAt time.Time
	Done         bool
}

// NewAccumulator creates a new accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{StartTime: time.Now()}
}

// Add processes a new chunk.
func (a *Accumulator) Add(chunk Chunk) {
	if chunk.Content != "" {
		a.ChunkCount++
		if a.FirstChunkAt.IsZero() {
			a.FirstChunkAt = time.Now()
		}
		a.Content.WriteString(chunk.Content)
	}
	if chunk.IsDone() {
		a.Done = true
		a.FinishReason = chunk.FinishReason
	}
}

// GetContent returns the accumulated content.
func (a *Accumulator) GetContent() string {
	return a.Content.String()
}

// Elapsed returns the time since streaming started.
func (a *Accumulator) Elapsed() time.Duration {
	return time.Since(a.StartTime)
}

// Callback returns a ChunkCallback that feeds this accumulator.
func (a *Accumulator) Callback() ChunkCallback {
	return func(chunk Chunk) {
		a.Add(chunk)
	}
}
