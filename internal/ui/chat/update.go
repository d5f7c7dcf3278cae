// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
//
// This file implements the Bubble Tea update loop and the commands behind it:
// streaming generation, reconciliation, and the save/delete/rename flows.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/reelcraft-tui/internal/classify"
	"github.com/jeranaias/reelcraft-tui/internal/export"
	"github.com/jeranaias/reelcraft-tui/internal/history"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/result"
	"github.com/jeranaias/reelcraft-tui/internal/ui/components"
	"github.com/jeranaias/reelcraft-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all messages for the generation view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamChunkMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if msg.Content != "" {
			m.streamingBuffer.Write(msg.Content)
			if !m.firstChunkSeen {
				m.firstChunkSeen = true
				m.spinner.SetDetail("")
			}
		}
		// Keep pumping the channel; render on the next tick.
		return m, waitForChunk(m.chunks, m.errs, m.acc)

	case StreamTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if content, ok := m.streamingBuffer.Flush(); ok {
			m.transcript += content
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
		}
		return m, streamTickCmd()

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case EntriesRefreshedMsg:
		m.session.SetEntries(msg.Entries)
		m.syncEntryList()
		m.syncedAt = time.Now()
		if msg.Denied {
			m.toasts.AddUpgrade()
		}
		return m, nil

	case EntrySavedMsg:
		return m.handleEntrySaved(msg)

	case EntryDeletedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, remote.ErrPermissionDenied) {
				m.toasts.AddUpgrade()
			} else {
				m.toasts.AddError("刪除失敗：" + msg.Err.Error())
			}
			return m, nil
		}
		m.session.Remove(msg.ID)
		m.persistUnconfirmed()
		m.syncEntryList()
		m.toasts.AddStatus("已刪除")
		return m, nil

	case EntryRenamedMsg:
		if msg.Err != nil {
			if msg.Rollback != nil {
				msg.Rollback()
			}
			m.syncEntryList()
			if errors.Is(msg.Err, remote.ErrPermissionDenied) {
				m.toasts.AddUpgrade()
			} else {
				m.toasts.AddError("重新命名失敗：" + msg.Err.Error())
			}
			return m, nil
		}
		m.toasts.AddSuccess("已重新命名")
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.toasts.AddError("匯出失敗：" + msg.Err.Error())
		} else {
			m.toasts.AddSuccess("已匯出至 " + msg.Path)
		}
		return m, nil

	case ConfigReloadedMsg:
		m.theme = styles.NewTheme(msg.ThemeMode)
		m.theme.SetSize(m.width, m.height)
		m.toasts.AddStatus("設定已重新載入")
		return m, nil

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		return m, components.ToastTickCmd()
	}

	// Delegate remaining messages to the focused components.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	if m.renaming {
		m.renameInput, cmd = m.renameInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if m.focus == FocusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// resize recomputes component dimensions after a terminal resize.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	listHeight := height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.entryList.SetSize(width-4, listHeight)

	m.viewport.Width = width - 4
	m.viewport.Height = height - listHeight - 7
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = width - 8
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes key presses based on focus and state.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Rename mode swallows everything except confirm/abort.
	if m.renaming {
		switch {
		case key.Matches(msg, m.keyMap.Submit):
			return m.commitRename()
		case key.Matches(msg, m.keyMap.Cancel):
			m.renaming = false
			m.renameID = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.cancelStream()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming {
			m.cancelStream()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.SwitchPane):
		if m.focus == FocusInput {
			m.focus = FocusList
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		return m, m.refreshEntriesCmd()

	case key.Matches(msg, m.keyMap.CycleFilter):
		m.entryList.CycleFilter()
		return m, nil
	}

	if m.focus == FocusInput {
		if key.Matches(msg, m.keyMap.Submit) {
			return m.submitPrompt()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m.handleListKey(msg)
}

// handleListKey handles keys while the entry list is focused.
func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.entryList.MoveUp()
		m.showSelected()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.entryList.MoveDown()
		m.showSelected()
		return m, nil

	case key.Matches(msg, m.keyMap.Save):
		entry, ok := m.entryList.Selected()
		if !ok {
			return m, nil
		}
		if entry.Confirmed {
			m.toasts.AddStatus("此筆結果已儲存")
			return m, nil
		}
		return m, m.saveEntryCmd(entry)

	case key.Matches(msg, m.keyMap.Delete):
		entry, ok := m.entryList.Selected()
		if !ok {
			return m, nil
		}
		if !entry.Confirmed {
			// Never reached the backend; drop it locally.
			m.session.Remove(entry.ID)
			m.persistUnconfirmed()
			m.syncEntryList()
			m.toasts.AddStatus("已刪除")
			return m, nil
		}
		return m, m.deleteEntryCmd(entry)

	case key.Matches(msg, m.keyMap.Rename):
		entry, ok := m.entryList.Selected()
		if !ok {
			return m, nil
		}
		m.renaming = true
		m.renameID = entry.ID
		m.renameInput.SetValue(entry.Title)
		m.renameInput.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		entry, ok := m.entryList.Selected()
		if !ok {
			return m, nil
		}
		return m, exportEntryCmd(entry)
	}

	return m, nil
}

// showSelected loads the selected entry's content into the viewport.
func (m *Model) showSelected() {
	entry, ok := m.entryList.Selected()
	if !ok {
		return
	}
	m.viewport.SetContent(m.theme.ResponseBubble.Render(entry.Content))
	m.viewport.GotoTop()
}

// =============================================================================
// GENERATION FLOW
// =============================================================================

// submitPrompt kicks off a streaming generation for the typed prompt.
func (m Model) submitPrompt() (Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}
	if m.state == StateStreaming {
		m.toasts.AddStatus("生成進行中，Esc 可取消")
		return m, nil
	}

	m.prompt = prompt
	m.input.SetValue("")
	m.transcript = ""
	m.streamingBuffer.Reset()
	m.firstChunkSeen = false
	m.state = StateStreaming

	ctx, cancel := context.WithCancel(context.Background())
	m.setCancelFunc(cancel)

	req := &remote.GenerateRequest{
		Prompt:  prompt,
		History: m.turns,
	}
	m.acc = remote.NewAccumulator()
	m.chunks, m.errs = m.client.GenerateStreamChan(ctx, req)

	m.viewport.SetContent(m.renderTranscript())
	m.spinner.SetDetail("連線中，Esc 可取消")

	return m, tea.Batch(
		m.spinner.Start(),
		waitForChunk(m.chunks, m.errs, m.acc),
		streamTickCmd(),
	)
}

// handleStreamComplete finalizes a generation: classify, store, log.
func (m Model) handleStreamComplete(msg StreamCompleteMsg) (Model, tea.Cmd) {
	m.state = StateReady
	m.spinner.Stop()
	m.cancelStream()

	if content, ok := m.streamingBuffer.ForceFlush(); ok {
		m.transcript += content
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			m.statusMsg = "已取消"
			return m, nil
		}
		if errors.Is(msg.Err, remote.ErrPermissionDenied) {
			m.toasts.AddUpgrade()
			return m, nil
		}
		m.toasts.AddError("生成失敗：" + msg.Err.Error())
		// A partial response is still worth keeping when it has substance.
		if strings.TrimSpace(msg.Response) == "" {
			return m, nil
		}
	}

	response := msg.Response
	if strings.TrimSpace(response) == "" {
		return m, nil
	}

	category := classify.Classify(m.prompt, response)
	entry := result.New("", response, category)

	m.session.Prepend(entry)
	m.persistUnconfirmed()
	m.syncEntryList()

	m.turns = append(m.turns,
		remote.Turn{Role: "user", Content: m.prompt},
		remote.Turn{Role: "assistant", Content: response},
	)

	m.toasts.AddStatus("已產生：" + category.DisplayName())

	var cmds []tea.Cmd
	if m.historyLog != nil {
		cmds = append(cmds, m.appendHistoryCmd(msg, category))
	}
	return m, tea.Batch(cmds...)
}

// handleEntrySaved applies the outcome of a save to session and cache.
func (m Model) handleEntrySaved(msg EntrySavedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.Denied {
			m.toasts.AddUpgrade()
		} else {
			m.toasts.AddError("儲存失敗：" + msg.Err.Error())
		}
		return m, nil
	}

	m.session.Confirm(msg.LocalID, msg.BackendID)
	m.persistUnconfirmed()
	m.syncEntryList()
	m.toasts.AddSuccess("已儲存")
	return m, nil
}

// commitRename applies the rename optimistically, then pushes it remote for
// confirmed entries. Local-only entries just persist to cache.
func (m Model) commitRename() (Model, tea.Cmd) {
	title := strings.TrimSpace(m.renameInput.Value())
	id := m.renameID
	m.renaming = false
	m.renameID = ""

	if title == "" || id == "" {
		return m, nil
	}

	rollback, err := m.session.ApplyTitle(id, title)
	if err != nil {
		m.toasts.AddError("找不到該筆結果")
		return m, nil
	}
	m.syncEntryList()

	if result.IsLocalID(id) {
		m.persistUnconfirmed()
		m.toasts.AddSuccess("已重新命名")
		return m, nil
	}
	return m, m.renameEntryCmd(id, title, rollback)
}

// =============================================================================
// COMMANDS
// =============================================================================

// showCachedCmd delivers cached entries without touching the network.
func (m Model) showCachedCmd() tea.Cmd {
	userID := m.session.UserID()
	reconciler := m.reconciler
	return func() tea.Msg {
		return EntriesRefreshedMsg{Entries: reconciler.Cached(userID)}
	}
}

// refreshEntriesCmd reconciles local and remote entries in the background.
func (m Model) refreshEntriesCmd() tea.Cmd {
	userID := m.session.UserID()
	reconciler := m.reconciler
	return func() tea.Msg {
		entries, err := reconciler.Refresh(context.Background(), userID)
		return EntriesRefreshedMsg{
			Entries: entries,
			Denied:  errors.Is(err, remote.ErrPermissionDenied),
		}
	}
}

// saveEntryCmd pushes a local entry to the backend. The local id doubles as
// the idempotency token so a retried create cannot duplicate the entry.
func (m Model) saveEntryCmd(entry result.Entry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		rec, err := client.Create(context.Background(), entry.ID, entry.Title, entry.Content, entry.Category.String())
		msg := EntrySavedMsg{LocalID: entry.ID, Err: err}
		if err != nil {
			msg.Denied = errors.Is(err, remote.ErrPermissionDenied)
			return msg
		}
		msg.BackendID = rec.ID
		return msg
	}
}

// deleteEntryCmd deletes a confirmed entry from the backend.
func (m Model) deleteEntryCmd(entry result.Entry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.Delete(context.Background(), entry.ID)
		if errors.Is(err, remote.ErrNotFound) {
			// Already gone remotely; treat as deleted.
			err = nil
		}
		return EntryDeletedMsg{ID: entry.ID, Err: err}
	}
}

// renameEntryCmd pushes a title change for a confirmed entry.
func (m Model) renameEntryCmd(id, title string, rollback func()) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.UpdateTitle(context.Background(), id, title)
		return EntryRenamedMsg{ID: id, Title: title, Rollback: rollback, Err: err}
	}
}

// exportEntryCmd writes the selected entry to a markdown file.
func exportEntryCmd(entry result.Entry) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		path, err := export.ExportToFile([]result.Entry{entry}, export.NewMarkdownExporter(opts), opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// appendHistoryCmd records a completed generation in the history log.
func (m Model) appendHistoryCmd(msg StreamCompleteMsg, category result.Category) tea.Cmd {
	log := m.historyLog
	rec := history.Record{
		UserID:     m.session.UserID(),
		Prompt:     m.prompt,
		Category:   category.String(),
		ChunkCount: msg.ChunkCount,
		Duration:   msg.Elapsed,
	}
	return func() tea.Msg {
		// Best effort; history failures never surface in the UI.
		_ = log.Append(rec)
		return nil
	}
}
