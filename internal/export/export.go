// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes generation results to files in portable formats.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts entries to a target format.
type Exporter interface {
	// Export renders the entries and returns the file content.
	Export(entries []result.Entry) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved.
	// Default: current working directory.
	OutputDir string

	// IncludeMetadata includes a header with category, timestamps and
	// confirmation status per entry.
	IncludeMetadata bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes the entries through the given exporter and returns the
// output file path.
func ExportToFile(entries []result.Entry, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(entries)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	name := "results"
	if len(entries) == 1 {
		name = sanitizeFilename(entries[0].Title)
	}
	filename := fmt.Sprintf("%s_%s%s", name, time.Now().Format("20060102_150405"), exporter.FileExtension())

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/': '-', '\\': '-', ':': '-', '*': '-', '?': '-',
		'"': '-', '<': '-', '>': '-', '|': '-',
		' ': '_', '\t': '_', '\n': '_', '\r': '_',
	}

	var out []rune
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			out = append(out, replacement)
		} else if r < 32 || r == 127 {
			out = append(out, '-')
		} else {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "result"
	}
	return string(out)
}
