// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the generation view for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/reelcraft-tui/internal/history"
	"github.com/jeranaias/reelcraft-tui/internal/localcache"
	"github.com/jeranaias/reelcraft-tui/internal/reconcile"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/session"
	"github.com/jeranaias/reelcraft-tui/internal/ui/components"
	"github.com/jeranaias/reelcraft-tui/internal/ui/styles"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// State represents the current state of the generation view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming response
)

// Focus identifies which pane receives key input.
type Focus int

const (
	FocusInput Focus = iota // Prompt input field
	FocusList               // Entry list
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the generation view.
type Model struct {
	// State
	state State
	focus Focus

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Current generation. The transcript is a plain string: the model is
	// copied on every Update, which a non-zero strings.Builder forbids.
	prompt     string
	transcript string
	turns      []remote.Turn

	// Streaming optimization
	streamingBuffer *StreamingBuffer
	acc             *remote.Accumulator
	chunks          <-chan remote.Chunk
	errs            <-chan error
	cancelMgr       *cancelManager // Pointer to avoid copying the mutex on Update
	firstChunkSeen  bool

	// Backend wiring
	client     *remote.Client
	session    *session.State
	reconciler *reconcile.Reconciler
	cache      *localcache.Store
	historyLog *history.Log // nil when history is disabled

	// UI Components
	entryList components.EntryList
	viewport  viewport.Model
	input     textinput.Model
	spinner   components.Spinner
	toasts    *components.ToastManager

	// Key bindings
	keyMap KeyMap

	// Rename mode
	renaming    bool
	renameID    string
	renameInput textinput.Model

	// Status
	statusMsg string
	syncedAt  time.Time
}

// Deps bundles everything the generation view needs from the rest of the app.
type Deps struct {
	Theme      *styles.Theme
	Client     *remote.Client
	Session    *session.State
	Reconciler *reconcile.Reconciler
	Cache      *localcache.Store
	History    *history.Log
}

// New creates a new generation view model.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "描述你想生成的內容，例如：請幫我建立IP人設檔案"
	ti.CharLimit = 4096
	ti.PromptStyle = deps.Theme.InputPrompt
	ti.PlaceholderStyle = deps.Theme.InputPlaceholder
	ti.Focus()

	ri := textinput.New()
	ri.Prompt = "新標題: "
	ri.CharLimit = 200
	ri.PromptStyle = deps.Theme.InputPrompt

	vp := viewport.New(80, 12)

	return Model{
		state:           StateReady,
		focus:           FocusInput,
		theme:           deps.Theme,
		streamingBuffer: NewStreamingBuffer(),
		cancelMgr:       newCancelManager(),
		client:          deps.Client,
		session:         deps.Session,
		reconciler:      deps.Reconciler,
		cache:           deps.Cache,
		historyLog:      deps.History,
		entryList:       components.NewEntryList(),
		viewport:        vp,
		input:           ti,
		renameInput:     ri,
		spinner:         components.NewGeneratingSpinner(),
		toasts:          components.NewToastManager(),
		keyMap:          DefaultKeyMap(),
	}
}

// Init seeds the view: cached entries show immediately, then a background
// refresh reconciles against the backend.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.showCachedCmd(),
		m.refreshEntriesCmd(),
		textinput.Blink,
		components.ToastTickCmd(),
	)
}

// IsStreaming reports whether a generation is in flight.
func (m *Model) IsStreaming() bool {
	return m.state == StateStreaming
}

// syncEntryList pushes the session's entries into the list component.
func (m *Model) syncEntryList() {
	m.entryList.SetEntries(m.session.Entries())
}

// persistUnconfirmed writes the session's current entries back to the local
// cache. Confirmed entries are filtered out by the store.
func (m *Model) persistUnconfirmed() {
	m.cache.Save(m.session.UserID(), m.session.Entries(), false)
}
