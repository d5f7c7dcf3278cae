// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
//
// This file defines keyboard bindings for the generation interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the generation interface.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	SwitchPane  key.Binding
	CycleFilter key.Binding
	Refresh     key.Binding
	Save        key.Binding
	Delete      key.Binding
	Rename      key.Binding
	Export      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "上移"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "下移"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "送出"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "取消生成"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "離開"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "切換焦點"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "切換分類"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "重新同步"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "儲存"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "刪除"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "重新命名"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "匯出"),
		),
	}
}

// ShortHelp returns the most commonly used shortcuts for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.SwitchPane, k.Quit}
}

// ListHelp returns the shortcuts active while the entry list is focused.
func (k KeyMap) ListHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Save, k.Delete, k.Rename, k.Export, k.CycleFilter}
}
