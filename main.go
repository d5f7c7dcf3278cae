// reelcraft TUI - a terminal client for short-video content generation.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/reelcraft-tui/internal/cli"
	"github.com/jeranaias/reelcraft-tui/internal/config"
	"github.com/jeranaias/reelcraft-tui/internal/history"
	"github.com/jeranaias/reelcraft-tui/internal/session"
	"github.com/jeranaias/reelcraft-tui/internal/ui/chat"
	"github.com/jeranaias/reelcraft-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdList:
		os.Exit(cli.RunList(args))
	case cli.CmdShow:
		os.Exit(cli.RunShow(args))
	case cli.CmdExport:
		os.Exit(cli.RunExport(args))
	case cli.CmdHistory:
		os.Exit(cli.RunHistory(args))
	case cli.CmdSetup:
		os.Exit(cli.RunSetup(args))
	case cli.CmdStatus:
		os.Exit(cli.RunStatus(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		os.Exit(runTUI(args))
	}
}

// appModel adapts the generation view to the tea.Model interface.
type appModel struct {
	chat chat.Model
}

func (m appModel) Init() tea.Cmd {
	return m.chat.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	c, cmd := m.chat.Update(msg)
	m.chat = c
	return m, cmd
}

func (m appModel) View() string {
	return m.chat.View()
}

// runTUI wires the full stack and runs the Bubble Tea program.
func runTUI(args cli.Args) int {
	env, err := cli.BuildEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	cfg := env.Cfg

	sess := session.New()
	sess.Init(env.UserID)
	defer sess.Teardown()

	var historyLog *history.Log
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path, err = history.DefaultPath()
		}
		if err == nil {
			if log, openErr := history.Open(path); openErr == nil {
				historyLog = log
				defer historyLog.Close()
			}
		}
	}

	theme := styles.NewTheme(cfg.UI.Theme)

	model := chat.New(chat.Deps{
		Theme:      theme,
		Client:     env.Client,
		Session:    sess,
		Reconciler: env.Reconciler,
		Cache:      env.Cache,
		History:    historyLog,
	})

	program := tea.NewProgram(appModel{chat: model}, tea.WithAltScreen())

	// Live-reload presentation settings while the TUI runs.
	if path, pathErr := config.ConfigPathTOML(); pathErr == nil {
		watcher, watchErr := config.NewWatcher(path, func(updated *config.Config) {
			program.Send(chat.ConfigReloadedMsg{ThemeMode: updated.UI.Theme})
		})
		if watchErr == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
