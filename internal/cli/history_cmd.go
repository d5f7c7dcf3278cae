// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - `reelcraft history` command handler.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/config"
	"github.com/jeranaias/reelcraft-tui/internal/history"
	"github.com/jeranaias/reelcraft-tui/internal/util"
)

// RunHistory shows recent generations from the local history log.
func RunHistory(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	if !cfg.History.Enabled {
		fmt.Println("歷史記錄已停用（config: history.enabled）")
		return 0
	}
	if args.User != "" {
		cfg.User.ID = args.User
	}

	path := cfg.History.Path
	if path == "" {
		path, err = history.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
	}

	log, err := history.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer log.Close()

	if args.Subcommand == "stats" {
		return runHistoryStats(log, cfg.User.ID, args.JSON)
	}

	limit := args.Parser().FlagIntOrDefault("limit", 20)
	records, err := log.Recent(cfg.User.ID, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if args.JSON {
		out, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	if len(records) == 0 {
		fmt.Println("尚無生成記錄")
		return 0
	}

	for _, r := range records {
		prompt := util.TruncateWidth(util.FirstLine(r.Prompt), 48)
		fmt.Printf("%s  %-12s  %s  (%d chunks, %s)\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Category, prompt,
			r.ChunkCount, r.Duration.Round(100*time.Millisecond))
	}
	return 0
}

// runHistoryStats prints per-category generation counts.
func runHistoryStats(log *history.Log, userID string, asJSON bool) int {
	counts, err := log.CountByCategory(userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if asJSON {
		out, _ := json.MarshalIndent(counts, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	if len(counts) == 0 {
		fmt.Println("尚無生成記錄")
		return 0
	}
	for category, n := range counts {
		fmt.Printf("%-12s %d\n", category, n)
	}
	return 0
}
