// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseBody(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestSSEReaderBasicEvents(t *testing.T) {
	body := "data: {\"content\":\"你好\"}\n\n" +
		"event: ping\ndata: {}\n\n" +
		"data: [DONE]\n\n"
	reader := NewSSEReader(strings.NewReader(body))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if string(data) != `{"content":"你好"}` {
		t.Errorf("data = %q", data)
	}

	eventType, _, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if eventType != "ping" {
		t.Errorf("event type = %q, want ping", eventType)
	}

	_, data, err = reader.ReadEvent()
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if string(data) != "[DONE]" {
		t.Errorf("data = %q, want [DONE]", data)
	}

	if _, _, err = reader.ReadEvent(); err != io.EOF {
		t.Errorf("err = %v, want EOF", err)
	}
}

func TestSSEReaderMultilineData(t *testing.T) {
	reader := NewSSEReader(strings.NewReader("data: line1\ndata: line2\n\n"))
	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if string(data) != "line1\nline2" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReaderDataBeforeEOF(t *testing.T) {
	// A final event without a trailing blank line must still be delivered.
	reader := NewSSEReader(strings.NewReader("data: tail"))
	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if string(data) != "tail" {
		t.Errorf("data = %q, want tail", data)
	}
}

func streamServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("accept = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, body)
	}))
}

func TestGenerateStreamAccumulates(t *testing.T) {
	server := streamServer(t, sseBody(
		`data: {"content":"【開場】"}`,
		`data: {"content":"直接點出痛點"}`,
		`data: {"content":"","finish_reason":"stop"}`,
	))
	defer server.Close()

	got, err := testClient(server.URL).GenerateAccumulate(context.Background(), &GenerateRequest{Prompt: "幫我寫腳本"})
	if err != nil {
		t.Fatalf("GenerateAccumulate failed: %v", err)
	}
	if got != "【開場】直接點出痛點" {
		t.Errorf("content = %q", got)
	}
}

func TestGenerateStreamStopsOnDone(t *testing.T) {
	server := streamServer(t, sseBody(
		`data: {"content":"a"}`,
		`data: [DONE]`,
		`data: {"content":"never delivered"}`,
	))
	defer server.Close()

	var chunks []Chunk
	err := testClient(server.URL).GenerateStream(context.Background(), &GenerateRequest{Prompt: "hi"}, func(c Chunk) {
		chunks = append(chunks, c)
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "a" {
		t.Errorf("chunks = %+v", chunks)
	}
}

func TestGenerateStreamSkipsMalformedChunks(t *testing.T) {
	server := streamServer(t, sseBody(
		`data: {not json`,
		`data: {"content":"ok"}`,
		`data: [DONE]`,
	))
	defer server.Close()

	var content strings.Builder
	err := testClient(server.URL).GenerateStream(context.Background(), &GenerateRequest{Prompt: "hi"}, func(c Chunk) {
		content.WriteString(c.Content)
	})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}
	if content.String() != "ok" {
		t.Errorf("content = %q, want ok", content.String())
	}
}

func TestGenerateStreamPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := testClient(server.URL).GenerateStream(context.Background(), &GenerateRequest{Prompt: "hi"}, func(Chunk) {})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestGenerateStreamChanDeliversAll(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&body, "data: {\"content\":\"c%d\"}\n\n", i)
	}
	body.WriteString("data: [DONE]\n\n")
	server := streamServer(t, body.String())
	defer server.Close()

	chunkChan, errChan := testClient(server.URL).GenerateStreamChan(context.Background(), &GenerateRequest{Prompt: "hi"})

	var got []string
	for chunk := range chunkChan {
		got = append(got, chunk.Content)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 5 || got[0] != "c0" || got[4] != "c4" {
		t.Errorf("chunks = %v", got)
	}
}

func TestGenerateStreamChanPreservesPartialOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"content\":\"partial\"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Drop the connection mid-stream.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer server.Close()

	chunkChan, errChan := testClient(server.URL).GenerateStreamChan(context.Background(), &GenerateRequest{Prompt: "hi"})
	for range chunkChan {
	}
	err := <-errChan
	if err == nil {
		t.Fatal("expected a stream error")
	}
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("err = %T (%v), want *StreamError", err, err)
	}
	if streamErr.Partial != "partial" {
		t.Errorf("partial = %q", streamErr.Partial)
	}
}

func TestGenerateStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"content\":\"a\"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	err := testClient(server.URL).GenerateStream(ctx, &GenerateRequest{Prompt: "hi"}, func(Chunk) {
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	cb := acc.Callback()
	cb(Chunk{Content: "第1天："})
	cb(Chunk{Content: "自我介紹"})
	cb(Chunk{FinishReason: "stop"})

	if got := acc.GetContent(); got != "第1天：自我介紹" {
		t.Errorf("content = %q", got)
	}
	if acc.ChunkCount != 2 {
		t.Errorf("chunk count = %d, want 2", acc.ChunkCount)
	}
	if !acc.Done || acc.FinishReason != "stop" {
		t.Errorf("done = %v, reason = %q", acc.Done, acc.FinishReason)
	}
}
