// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports entries to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export renders the entries as a Markdown document, one section per entry.
func (e *MarkdownExporter) Export(entries []result.Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to export")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("entries: %d\n", len(entries)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: reelcraft-tui\n")
		sb.WriteString("---\n\n")
	}

	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(fmt.Sprintf("# %s\n\n", entry.Title))

		if e.options.IncludeMetadata {
			sb.WriteString(fmt.Sprintf("- **分類**: %s\n", entry.Category.DisplayName()))
			sb.WriteString(fmt.Sprintf("- **建立時間**: %s\n", entry.CreatedAt.Format("2006-01-02 15:04")))
			status := "未儲存"
			if entry.Confirmed {
				status = "已儲存"
			}
			sb.WriteString(fmt.Sprintf("- **狀態**: %s\n\n", status))
		}

		sb.WriteString(entry.Content)
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
