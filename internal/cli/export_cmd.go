// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - `reelcraft export` command handler.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/reelcraft-tui/internal/export"
	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// RunExport writes entries to a markdown or JSON file.
// With an id argument it exports one entry; otherwise all (optionally
// filtered by --category).
func RunExport(args Args) int {
	env, err := BuildEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	parser := args.Parser()

	entries := env.FetchEntries(context.Background())
	if args.Query != "" {
		entry, ok := findEntry(entries, args.Query)
		if !ok {
			fmt.Fprintf(os.Stderr, "找不到結果 %q\n", args.Query)
			return 1
		}
		entries = []result.Entry{entry}
	} else {
		entries, err = filterByCategory(entries, parser.Flag("category"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
	}

	if _, ok := entriesOrExit(entries); !ok {
		return 0
	}

	opts := export.DefaultOptions()
	opts.OutputDir = parser.FlagOrDefault("output", ".")

	var exporter export.Exporter
	switch format := parser.FlagOrDefault("format", "md"); format {
	case "md", "markdown":
		exporter = export.NewMarkdownExporter(opts)
	case "json":
		exporter = export.NewJSONExporter(opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (md, json)\n", format)
		return 1
	}

	path, err := export.ExportToFile(entries, exporter, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if !args.Quiet {
		fmt.Printf("已匯出 %d 筆結果至 %s\n", len(entries), path)
	}
	return 0
}
