// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the application state for the active user: the
// merged result list the UI displays and the user identity it belongs to.
//
// State lives in an explicit container handed to the presentation layer,
// with a defined init (login) and teardown (logout) lifecycle. Nothing here
// is ambient or global.
package session

import (
	"errors"
	"sync"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// ErrNoSession indicates an operation that needs an active session.
var ErrNoSession = errors.New("no active session")

// ErrEntryNotFound indicates the referenced entry is not in the view.
var ErrEntryNotFound = errors.New("entry not found")

// =============================================================================
// STATE CONTAINER
// =============================================================================

// State is the mutable application state for one logged-in user. All access
// is mutex-guarded: the TUI event loop and background fetch goroutines both
// touch it.
type State struct {
	mu      sync.RWMutex
	userID  string
	active  bool
	entries []result.Entry
}

// New creates an empty, inactive state container.
func New() *State {
	return &State{}
}

// Init starts a session for userID, clearing any previous state. An empty
// userID starts a guest session: the UI works, but nothing persists.
func (s *State) Init(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.active = true
	s.entries = nil
}

// Teardown ends the session and drops all held state.
func (s *State) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.active = false
	s.entries = nil
}

// Active reports whether a session is in progress.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// UserID returns the active user id, empty for guests.
func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// IsGuest reports whether the session has no backing user.
func (s *State) IsGuest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID == ""
}

// =============================================================================
// ENTRY VIEW-MODEL
// =============================================================================

// SetEntries replaces the displayed entry list, typically with the output
// of a reconciliation pass.
func (s *State) SetEntries(entries []result.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]result.Entry(nil), entries...)
}

// Entries returns a copy of the displayed entry list.
func (s *State) Entries() []result.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]result.Entry(nil), s.entries...)
}

// EntriesByCategory returns the displayed entries filed under category.
func (s *State) EntriesByCategory(category result.Category) []result.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []result.Entry
	for _, e := range s.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Entry returns the displayed entry with the given id.
func (s *State) Entry(id string) (result.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return result.Entry{}, false
}

// Prepend inserts a freshly generated entry at the top of the view.
func (s *State) Prepend(entry result.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]result.Entry{entry}, s.entries...)
}

// Remove deletes the entry with the given id from the view.
func (s *State) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Confirm marks the entry as accepted by the backend, swapping in the
// server-assigned id.
func (s *State) Confirm(localID, backendID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == localID {
			s.entries[i].Confirm(backendID)
			return true
		}
	}
	return false
}

// =============================================================================
// OPTIMISTIC UPDATES
// =============================================================================

// ApplyTitle optimistically renames an entry in the view and returns a
// rollback closure restoring the previous title. Callers invoke the
// rollback when the backend rejects the rename, making the reversion
// visible to the user.
func (s *State) ApplyTitle(id, title string) (rollback func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		previous := s.entries[i].Title
		s.entries[i].Title = title

		return func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for j := range s.entries {
				if s.entries[j].ID == id {
					s.entries[j].Title = previous
					return
				}
			}
		}, nil
	}
	return nil, ErrEntryNotFound
}
