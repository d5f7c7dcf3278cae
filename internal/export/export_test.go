// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

func sampleEntries() []result.Entry {
	return []result.Entry{
		{
			ID:        "srv-1",
			Title:     "開場 hook 三連發",
			Content:   "【開場】\n直接點出痛點",
			Category:  result.CategoryScript,
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Confirmed: true,
		},
		{
			ID:        "local-2",
			Title:     "兩週檔期",
			Content:   "第1天：自我介紹",
			Category:  result.CategoryPlanning,
			CreatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestMarkdownExport(t *testing.T) {
	content, err := NewMarkdownExporter(nil).Export(sampleEntries())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := string(content)

	for _, want := range []string{
		"# 開場 hook 三連發",
		"# 兩週檔期",
		"短影音腳本", // category display name
		"已儲存",
		"未儲存",
		"第1天：自我介紹",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportEmpty(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("expected error for empty export")
	}
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	opts := &Options{IncludeMetadata: false}
	content, err := NewMarkdownExporter(opts).Export(sampleEntries())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "generator:") {
		t.Error("metadata present despite IncludeMetadata=false")
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	content, err := NewJSONExporter(nil).Export(sampleEntries())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded []result.Entry
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "srv-1" || decoded[1].Category != result.CategoryPlanning {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleEntries()[:1], NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q, want .md suffix", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "開場 hook 三連發") {
		t.Error("file content missing entry title")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a/b:c", "a-b-c"},
		{"開場 hook", "開場_hook"},
		{"", "result"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
