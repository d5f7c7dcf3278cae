// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
//
// This file implements rendering for the generation interface.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/reelcraft-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full generation interface.
func (m Model) View() string {
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.state == StateStreaming {
		sections = append(sections, m.spinner.View())
	}

	sections = append(sections, m.entryList.View(m.theme))

	if m.renaming {
		sections = append(sections, m.theme.InputContainer.Render(m.renameInput.View()))
	} else {
		sections = append(sections, m.theme.InputContainer.Render(m.input.View()))
	}

	sections = append(sections, m.renderStatusBar())

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.toasts.HasToasts() {
		overlay := components.RenderToastStack(m.toasts.GetToasts(), m.width, 0)
		view = lipgloss.JoinVertical(lipgloss.Left, view, overlay)
	}

	return m.theme.Container.Render(view)
}

// renderHeader renders the title line with session info.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("ReelCraft")
	subtitle := m.theme.HeaderSubtitle.Render("短影音腳本生成")

	who := "訪客"
	if !m.session.IsGuest() {
		who = m.session.UserID()
	}
	user := m.theme.EntryMeta.Render(who)

	sync := ""
	if !m.syncedAt.IsZero() {
		sync = m.theme.EntryMeta.Render("最後同步 " + m.syncedAt.Format("15:04"))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle, "  ", user, "  ", sync)
	return m.theme.Header.Render(line)
}

// renderTranscript renders the prompt and the streamed response so far.
func (m Model) renderTranscript() string {
	var sb strings.Builder

	if m.prompt != "" {
		sb.WriteString(m.theme.PromptBubble.Render("你: " + m.prompt))
		sb.WriteString("\n\n")
	}

	text := m.transcript
	if text != "" {
		sb.WriteString(m.theme.ResponseBubble.Render(text))
	} else if m.state == StateStreaming && !m.firstChunkSeen {
		sb.WriteString(m.theme.SystemNote.Render("等待回應..."))
	}

	return sb.String()
}

// renderStatusBar renders the shortcut hints for the focused pane.
func (m Model) renderStatusBar() string {
	bindings := m.keyMap.ShortHelp()
	if m.focus == FocusList {
		bindings = m.keyMap.ListHelp()
	}

	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}

	if m.statusMsg != "" {
		parts = append(parts, m.theme.SystemNote.Render(m.statusMsg))
	}

	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}
