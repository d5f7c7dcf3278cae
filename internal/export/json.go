// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports entries to JSON format. JSON exports always carry the
// complete entry data so the output can be re-imported faithfully; metadata
// options are accepted for interface consistency but not applied.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export renders the entries as indented JSON.
func (e *JSONExporter) Export(entries []result.Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to export")
	}
	return json.MarshalIndent(entries, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
