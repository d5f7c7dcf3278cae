// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list.go - `reelcraft list` and `reelcraft show` command handlers.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/reelcraft-tui/internal/result"
	"github.com/jeranaias/reelcraft-tui/internal/util"
)

// RunList prints the reconciled result entries, newest first.
func RunList(args Args) int {
	env, err := BuildEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	entries := env.FetchEntries(context.Background())
	entries, err = filterByCategory(entries, args.Parser().Flag("category"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if args.JSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if len(entries) == 0 {
		fmt.Println("尚無生成結果")
		return 0
	}

	for _, e := range entries {
		status := "未儲存"
		if e.Confirmed {
			status = "已儲存"
		}
		title := util.PadWidth(util.TruncateWidth(e.Title, 36), 36)
		category := util.PadWidth(e.Category.DisplayName(), 10)
		fmt.Printf("%-22s  %s  %s  %s  %s\n",
			e.ID, category, title, e.CreatedAt.Format("2006-01-02 15:04"), status)
	}
	return 0
}

// RunShow renders a single entry's content as markdown in the terminal.
func RunShow(args Args) int {
	if args.Query == "" {
		fmt.Fprintln(os.Stderr, "Usage: reelcraft show <id>")
		return 1
	}

	env, err := BuildEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	entries := env.FetchEntries(context.Background())
	entry, ok := findEntry(entries, args.Query)
	if !ok {
		fmt.Fprintf(os.Stderr, "找不到結果 %q\n", args.Query)
		return 1
	}

	if args.JSON {
		out, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	doc := "# " + entry.Title + "\n\n" + entry.Content + "\n"
	rendered, err := renderMarkdown(doc)
	if err != nil {
		// Fall back to plain text when the terminal renderer fails.
		fmt.Println(doc)
		return 0
	}
	fmt.Print(rendered)
	fmt.Printf("\n%s · %s\n", entry.Category.DisplayName(), entry.CreatedAt.Format("2006-01-02 15:04"))
	return 0
}

// renderMarkdown renders markdown for terminal display via glamour.
func renderMarkdown(doc string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(doc)
}

// entriesOrExit is a convenience for handlers that need at least one entry.
func entriesOrExit(entries []result.Entry) ([]result.Entry, bool) {
	if len(entries) == 0 {
		fmt.Println("尚無生成結果")
		return nil, false
	}
	return entries, true
}
