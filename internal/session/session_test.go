// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

func seededState() *State {
	s := New()
	s.Init("u-1")
	s.SetEntries([]result.Entry{
		{ID: "srv-1", Title: "IP 定位", Category: result.CategoryPositioning, CreatedAt: time.Now(), Confirmed: true},
		{ID: "local-1", Title: "腳本草稿", Category: result.CategoryScript, CreatedAt: time.Now()},
	})
	return s
}

func TestInitTeardownLifecycle(t *testing.T) {
	s := seededState()
	if !s.Active() || s.UserID() != "u-1" {
		t.Fatalf("active = %v, user = %q", s.Active(), s.UserID())
	}

	s.Teardown()
	if s.Active() {
		t.Error("still active after teardown")
	}
	if len(s.Entries()) != 0 {
		t.Error("entries survived teardown")
	}

	// A new login must not see the previous user's state.
	s.Init("u-2")
	if s.UserID() != "u-2" || len(s.Entries()) != 0 {
		t.Errorf("stale state after re-init: user=%q entries=%d", s.UserID(), len(s.Entries()))
	}
}

func TestGuestSession(t *testing.T) {
	s := New()
	s.Init("")
	if !s.IsGuest() {
		t.Error("empty user id must be a guest session")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := seededState()
	view := s.Entries()
	view[0].Title = "mutated"

	fresh, _ := s.Entry("srv-1")
	if fresh.Title != "IP 定位" {
		t.Error("caller mutation leaked into state")
	}
}

func TestEntriesByCategory(t *testing.T) {
	s := seededState()
	scripts := s.EntriesByCategory(result.CategoryScript)
	if len(scripts) != 1 || scripts[0].ID != "local-1" {
		t.Errorf("scripts = %+v", scripts)
	}
	if got := s.EntriesByCategory(result.CategoryTopics); len(got) != 0 {
		t.Errorf("topics = %+v, want empty", got)
	}
}

func TestPrependAndRemove(t *testing.T) {
	s := seededState()
	s.Prepend(result.Entry{ID: "local-2", Category: result.CategoryTopics})

	entries := s.Entries()
	if entries[0].ID != "local-2" {
		t.Errorf("first = %q, want local-2", entries[0].ID)
	}

	if !s.Remove("local-2") {
		t.Fatal("Remove returned false")
	}
	if _, ok := s.Entry("local-2"); ok {
		t.Error("entry still present after Remove")
	}
	if s.Remove("nope") {
		t.Error("Remove of unknown id returned true")
	}
}

func TestConfirmSwapsID(t *testing.T) {
	s := seededState()
	if !s.Confirm("local-1", "srv-9") {
		t.Fatal("Confirm returned false")
	}
	e, ok := s.Entry("srv-9")
	if !ok || !e.Confirmed {
		t.Errorf("entry = %+v, ok = %v", e, ok)
	}
	if _, ok := s.Entry("local-1"); ok {
		t.Error("old local id still visible")
	}
}

func TestApplyTitleRollback(t *testing.T) {
	s := seededState()

	rollback, err := s.ApplyTitle("srv-1", "新的標題")
	if err != nil {
		t.Fatalf("ApplyTitle failed: %v", err)
	}
	if e, _ := s.Entry("srv-1"); e.Title != "新的標題" {
		t.Errorf("title = %q after optimistic apply", e.Title)
	}

	rollback()
	if e, _ := s.Entry("srv-1"); e.Title != "IP 定位" {
		t.Errorf("title = %q after rollback, want original", e.Title)
	}
}

func TestApplyTitleUnknownEntry(t *testing.T) {
	s := seededState()
	if _, err := s.ApplyTitle("ghost", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := seededState()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Prepend(result.Entry{ID: result.NewLocalID(time.Now()), Category: result.CategoryScript})
		}()
		go func() {
			defer wg.Done()
			_ = s.Entries()
		}()
	}
	wg.Wait()

	if got := len(s.Entries()); got != 52 {
		t.Errorf("entries = %d, want 52", got)
	}
}
