// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package result defines the generated-content entry type shared by the
// cache, remote client, reconciler and UI.
package result

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the bucket an entry is filed under. Exactly one category is
// assigned at creation time and it never changes afterwards; changing the
// bucket means recreating the entry.
type Category string

const (
	// CategoryPositioning is an IP/persona positioning profile.
	CategoryPositioning Category = "positioning"
	// CategoryTopics is a topic-selection list.
	CategoryTopics Category = "topics"
	// CategoryPlanning is a multi-day (typically 14-day) content plan.
	CategoryPlanning Category = "planning"
	// CategoryScript is a single short-video script.
	CategoryScript Category = "script"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryPositioning, CategoryTopics, CategoryPlanning, CategoryScript}
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPositioning, CategoryTopics, CategoryPlanning, CategoryScript:
		return true
	}
	return false
}

// String returns the wire name of the category.
func (c Category) String() string {
	return string(c)
}

// DisplayName returns the human-readable label shown in tabs and titles.
func (c Category) DisplayName() string {
	switch c {
	case CategoryPositioning:
		return "IP 人設定位"
	case CategoryTopics:
		return "選題企劃"
	case CategoryPlanning:
		return "14 天規劃"
	case CategoryScript:
		return "短影音腳本"
	default:
		return string(c)
	}
}

// ParseCategory converts a wire name into a Category.
// Unknown names return CategoryPositioning and false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, true
	}
	return CategoryPositioning, false
}

// =============================================================================
// RESULT ENTRY
// =============================================================================

// Entry is a single generated artifact: a positioning profile, topic list,
// content plan or script.
type Entry struct {
	// ID is unique within a user's scope. Locally created entries carry a
	// timestamp-derived id until the backend assigns a durable one.
	ID string `json:"id"`

	// Title is human-editable, defaulted from the category and timestamp.
	Title string `json:"title"`

	// Content is the generated text. May contain lightweight markdown.
	Content string `json:"content"`

	// Category is assigned once at creation by the classifier.
	Category Category `json:"category"`

	// CreatedAt is set at creation and never changes.
	CreatedAt time.Time `json:"created_at"`

	// Confirmed is true once the backend has durably accepted the entry.
	// The transition false -> true happens exactly once, never back.
	Confirmed bool `json:"confirmed"`
}

// New creates an unconfirmed entry with a fresh local id.
// An empty title is defaulted from the category and creation time.
func New(title, content string, category Category) Entry {
	now := time.Now()
	if title == "" {
		title = DefaultTitle(category, now)
	}
	return Entry{
		ID:        NewLocalID(now),
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: now,
	}
}

// DefaultTitle builds the default title for a category created at t.
func DefaultTitle(category Category, t time.Time) string {
	return category.DisplayName() + " " + t.Format("2006-01-02 15:04")
}

// localIDPrefix marks ids minted on this client before backend confirmation.
const localIDPrefix = "local-"

// NewLocalID mints a timestamp-derived id for a not-yet-confirmed entry.
// A short random suffix keeps same-millisecond creations distinct.
func NewLocalID(t time.Time) string {
	return fmt.Sprintf("%s%d-%s", localIDPrefix, t.UnixMilli(), uuid.NewString()[:8])
}

// IsLocalID reports whether id was minted locally (not backend-assigned).
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// Confirm marks the entry as durably stored under the backend-assigned id.
// Confirming an already-confirmed entry keeps its existing id.
func (e *Entry) Confirm(backendID string) {
	if e.Confirmed {
		return
	}
	if backendID != "" {
		e.ID = backendID
	}
	e.Confirmed = true
}

// Preview returns the first line of the content, for list display.
func (e *Entry) Preview() string {
	content := strings.TrimSpace(e.Content)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return content
}
