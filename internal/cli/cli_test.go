// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := parseArgs(nil)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want CmdTUI", cmd)
	}
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{[]string{"list"}, CmdList},
		{[]string{"ls"}, CmdList},
		{[]string{"show", "srv-1"}, CmdShow},
		{[]string{"export"}, CmdExport},
		{[]string{"history"}, CmdHistory},
		{[]string{"setup"}, CmdSetup},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}

	for _, tt := range tests {
		cmd, _ := parseArgs(tt.argv)
		if cmd != tt.want {
			t.Errorf("parseArgs(%v) = %v, want %v", tt.argv, cmd, tt.want)
		}
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"--user", "u1", "--api-url", "https://example.com", "--json", "list"})
	if cmd != CmdList {
		t.Fatalf("cmd = %v, want CmdList", cmd)
	}
	if args.User != "u1" {
		t.Errorf("User = %q", args.User)
	}
	if args.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if !args.JSON {
		t.Error("JSON flag not set")
	}
}

func TestParseShowCapturesID(t *testing.T) {
	_, args := parseArgs([]string{"show", "srv-42"})
	if args.Query != "srv-42" {
		t.Errorf("Query = %q, want srv-42", args.Query)
	}
}

func TestParseHistorySubcommand(t *testing.T) {
	_, args := parseArgs([]string{"history", "stats"})
	if args.Subcommand != "stats" {
		t.Errorf("Subcommand = %q, want stats", args.Subcommand)
	}
}

func TestArgParserFlags(t *testing.T) {
	p := NewArgParser([]string{"stats", "--limit", "50", "--format=json", "--confirm"})

	if p.Subcommand() != "stats" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	if p.FlagIntOrDefault("limit", 20) != 50 {
		t.Errorf("limit = %d, want 50", p.FlagIntOrDefault("limit", 20))
	}
	if p.Flag("format") != "json" {
		t.Errorf("format = %q", p.Flag("format"))
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm flag not set")
	}
	if p.FlagIntOrDefault("missing", 7) != 7 {
		t.Error("default not applied for missing flag")
	}
	if p.Positional(0) != "stats" {
		t.Errorf("Positional(0) = %q, want stats", p.Positional(0))
	}
	if p.Positional(9) != "" {
		t.Error("out-of-range positional must be empty")
	}
}

func TestFindEntryPrefixMatch(t *testing.T) {
	entries := testEntries()

	if _, ok := findEntry(entries, "srv-abcdef"); !ok {
		t.Error("exact match failed")
	}
	if e, ok := findEntry(entries, "srv-ab"); !ok || e.ID != "srv-abcdef" {
		t.Error("prefix match failed")
	}
	if _, ok := findEntry(entries, "x"); ok {
		t.Error("single-char prefix must not match")
	}
}

func TestFilterByCategory(t *testing.T) {
	entries := testEntries()

	out, err := filterByCategory(entries, "script")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "srv-abcdef" {
		t.Errorf("filtered = %+v", out)
	}

	if _, err := filterByCategory(entries, "bogus"); err == nil {
		t.Error("expected error for unknown category")
	}

	all, err := filterByCategory(entries, "")
	if err != nil || len(all) != 2 {
		t.Errorf("empty filter should keep all entries")
	}
}

// testEntries builds a small fixture set for helper tests.
func testEntries() []result.Entry {
	return []result.Entry{
		{ID: "srv-abcdef", Title: "開場 hook", Category: result.CategoryScript},
		{ID: "local-1-deadbeef", Title: "兩週檔期", Category: result.CategoryPlanning},
	}
}
