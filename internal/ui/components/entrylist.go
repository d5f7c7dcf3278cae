// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the reelcraft TUI.
package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/reelcraft-tui/internal/result"
	"github.com/jeranaias/reelcraft-tui/internal/ui/styles"
	"github.com/jeranaias/reelcraft-tui/internal/util"
)

// =============================================================================
// ENTRY LIST
// =============================================================================

// EntryList renders the reconciled result entries, newest first, with a
// movable cursor and an optional category filter.
type EntryList struct {
	entries []result.Entry
	cursor  int
	filter  result.Category // empty = all categories
	width   int
	height  int
}

// NewEntryList creates an empty entry list.
func NewEntryList() EntryList {
	return EntryList{}
}

// SetEntries replaces the visible entries, keeping the cursor on the same
// entry when it survives the update.
func (l *EntryList) SetEntries(entries []result.Entry) {
	var selectedID string
	if e, ok := l.Selected(); ok {
		selectedID = e.ID
	}

	l.entries = entries
	l.cursor = 0
	if selectedID == "" {
		return
	}
	for i, e := range l.visible() {
		if e.ID == selectedID {
			l.cursor = i
			return
		}
	}
}

// SetSize updates the layout dimensions.
func (l *EntryList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetFilter restricts the view to one category; an empty category shows all.
// The cursor resets since the visible set changed.
func (l *EntryList) SetFilter(c result.Category) {
	l.filter = c
	l.cursor = 0
}

// Filter returns the active category filter.
func (l *EntryList) Filter() result.Category {
	return l.filter
}

// CycleFilter advances the filter through all -> positioning -> topics ->
// planning -> script -> all.
func (l *EntryList) CycleFilter() {
	categories := result.Categories()
	if l.filter == "" {
		l.SetFilter(categories[0])
		return
	}
	for i, c := range categories {
		if c == l.filter {
			if i == len(categories)-1 {
				l.SetFilter("")
			} else {
				l.SetFilter(categories[i+1])
			}
			return
		}
	}
	l.SetFilter("")
}

// visible returns the entries matching the active filter.
func (l *EntryList) visible() []result.Entry {
	if l.filter == "" {
		return l.entries
	}
	out := make([]result.Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Category == l.filter {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of visible entries.
func (l *EntryList) Len() int {
	return len(l.visible())
}

// Selected returns the entry under the cursor.
func (l *EntryList) Selected() (result.Entry, bool) {
	visible := l.visible()
	if l.cursor < 0 || l.cursor >= len(visible) {
		return result.Entry{}, false
	}
	return visible[l.cursor], true
}

// MoveUp moves the cursor up one entry.
func (l *EntryList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves the cursor down one entry.
func (l *EntryList) MoveDown() {
	if l.cursor < len(l.visible())-1 {
		l.cursor++
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the list.
func (l *EntryList) View(theme *styles.Theme) string {
	visible := l.visible()

	header := l.renderHeader(theme, len(visible))
	if len(visible) == 0 {
		empty := theme.SystemNote.Render("尚無生成結果，輸入提示開始生成")
		return theme.EntryList.Render(lipgloss.JoinVertical(lipgloss.Left, header, empty))
	}

	rows := []string{header}
	maxRows := l.height - 1
	if maxRows < 1 {
		maxRows = len(visible)
	}

	// Keep the cursor in the window.
	start := 0
	if l.cursor >= maxRows {
		start = l.cursor - maxRows + 1
	}

	for i := start; i < len(visible) && i-start < maxRows; i++ {
		rows = append(rows, l.renderRow(theme, visible[i], i == l.cursor))
	}

	return theme.EntryList.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderHeader renders the filter line above the entries.
func (l *EntryList) renderHeader(theme *styles.Theme, count int) string {
	label := "全部"
	if l.filter != "" {
		label = l.filter.DisplayName()
	}
	return theme.EntryMeta.Render("[" + label + "] " + itoa(count) + " 筆")
}

// renderRow renders a single entry row.
func (l *EntryList) renderRow(theme *styles.Theme, e result.Entry, selected bool) string {
	marker := styles.StatusIndicators.Unsaved
	markerStyle := theme.EntryUnsaved
	if e.Confirmed {
		marker = styles.StatusIndicators.Saved
		markerStyle = theme.EntrySaved
	}

	categoryStyle := lipgloss.NewStyle().Foreground(styles.CategoryColor(e.Category))
	category := categoryStyle.Render(e.Category.DisplayName())

	// Wide terminals cap the title and spend the leftover width on a
	// content preview.
	titleWidth := l.width - 24
	wide := l.width >= 100
	if wide {
		titleWidth = 40
	}
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := util.PadWidth(util.TruncateWidth(e.Title, titleWidth), titleWidth)

	row := markerStyle.Render(marker) + " " + category + " " +
		theme.EntryTitle.Render(title) + " " +
		theme.EntryMeta.Render(relativeTime(e.CreatedAt))

	if wide {
		preview := util.TruncateWidth(e.Preview(), l.width-titleWidth-28)
		row += " " + theme.EntryMeta.Render(preview)
	}

	if selected {
		return theme.EntryItemSelected.Render("> " + row)
	}
	return theme.EntryItem.Render("  " + row)
}

// relativeTime formats a timestamp relative to now for list display.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "剛剛"
	case d < time.Hour:
		return itoa(int(d.Minutes())) + " 分鐘前"
	case d < 24*time.Hour:
		return itoa(int(d.Hours())) + " 小時前"
	default:
		return t.Format("2006-01-02")
	}
}
