// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for reelcraft.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdList
	CmdShow
	CmdExport
	CmdHistory
	CmdSetup
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON    bool
	Quiet   bool
	User    string
	BaseURL string

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after command extraction)
	Raw []string

	parser *ArgParser
}

// Parser gives command handlers access to the flag parser.
func (a *Args) Parser() *ArgParser {
	if a.parser == nil {
		a.parser = NewArgParser(a.Raw)
	}
	return a.parser
}

const usageText = `reelcraft - terminal client for short-video content generation

It provides:
  - Streaming script/topic/plan generation in the terminal
  - A local cache for unsaved results, reconciled with your account
  - Markdown/JSON export of generated results

Usage:
  reelcraft                       Start TUI (default)
  reelcraft list                  List generated results
    --category positioning|topics|planning|script
    --json                        Output in JSON format
  reelcraft show <id>             Render one result as markdown
  reelcraft export [id]           Export results to a file
    --format md|json              Export format (default: md)
    --output DIR                  Output directory (default: .)
    --category CATEGORY           Export one category only
  reelcraft history               Show recent generations
    --limit N                     Show last N generations (default: 20)
    stats                         Show per-category counts
  reelcraft setup                 First-run wizard (API key, user id)
  reelcraft status                Show configuration and connectivity
  reelcraft version               Show version information

Global flags:
  --user ID                       Act as a specific user id
  --api-url URL                   Override the backend base URL
  --quiet                         Suppress non-essential output

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("reelcraft version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "list", "ls":
		return CmdList, parsed

	case "show":
		if len(remaining) > 0 {
			parsed.Query = remaining[0]
		}
		return CmdShow, parsed

	case "export":
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsed.Query = remaining[0]
		}
		return CmdExport, parsed

	case "history":
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			parsed.Subcommand = remaining[0]
		}
		return CmdHistory, parsed

	case "setup":
		return CmdSetup, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var parsed Args
	remaining := make([]string, 0, len(argv))

	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch arg {
		case "--json":
			parsed.JSON = true
			i++
		case "--quiet", "-q":
			parsed.Quiet = true
			i++
		case "--user":
			if i+1 < len(argv) {
				parsed.User = argv[i+1]
				i += 2
			} else {
				i++
			}
		case "--api-url":
			if i+1 < len(argv) {
				parsed.BaseURL = argv[i+1]
				i += 2
			} else {
				i++
			}
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	return remaining, parsed
}
