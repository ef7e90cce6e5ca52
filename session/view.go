// file: session/view.go
package session

import (
	"slices"
	"sync"
	"sync/atomic"

	"codenames-sync/logger"
	"codenames-sync/models"
)

// View is the client-local projection rendered by the UI. Published values
// are never modified; every change produces a new View.
type View struct {
	Board           []models.Word
	GameState       *models.GameState
	LocalSessionID  models.SessionID
	LocalPlayerName string
	// Stale is set while the live channel is down.
	Stale bool
	// Err holds a fatal error for the view, such as an unknown game.
	Err error
}

// Ready reports whether the game may be started.
func (v View) Ready() bool {
	return AllSlotsFilled(v.GameState)
}

// LocalPlayer returns this session's seat, if it has one.
func (v View) LocalPlayer() (models.Player, bool) {
	if v.GameState == nil {
		return models.Player{}, false
	}
	return v.GameState.PlayerBySession(v.LocalSessionID)
}

// ViewModel is the single cell holding the View. Writers are serialised;
// readers load the current value without locking and always see a whole
// update or none of it. After Dispose every update is discarded.
type ViewModel struct {
	mu        sync.Mutex
	current   atomic.Pointer[View]
	disposed  atomic.Bool
	listeners []func(View)
}

// NewViewModel creates an empty view for the given session.
func NewViewModel(sessionID models.SessionID) *ViewModel {
	m := &ViewModel{}
	m.current.Store(&View{LocalSessionID: sessionID})
	return m
}

// Snapshot returns the current View.
func (m *ViewModel) Snapshot() View {
	return *m.current.Load()
}

// OnChange registers fn to run after each published update, on the
// goroutine that produced the update. With several producers running at
// once, notifications can arrive out of order; Snapshot is always current.
func (m *ViewModel) OnChange(fn func(View)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// SetBoard stores the board once. Later calls are ignored: the board is
// immutable for the life of the view.
func (m *ViewModel) SetBoard(words []models.Word) bool {
	return m.update("SetBoard", func(v *View) bool {
		if v.Board != nil {
			return false
		}
		v.Board = slices.Clone(words)
		if v.Board == nil {
			v.Board = []models.Word{}
		}
		return true
	})
}

// ApplyState merges a GameState from any producer (channel, join response,
// snapshot refetch) under the version rule in Merge.
func (m *ViewModel) ApplyState(gs models.GameState) bool {
	return m.update("ApplyState", func(v *View) bool {
		next, ok := Merge(v.GameState, gs)
		if !ok {
			logger.Debug.Printf("[ViewModel.ApplyState] Discarding stale or duplicate state game=%s version=%d", gs.GameID, gs.Version)
			return false
		}
		v.GameState = &next
		return true
	})
}

// SetLocalPlayerName records the name this client joined with.
func (m *ViewModel) SetLocalPlayerName(name string) bool {
	return m.update("SetLocalPlayerName", func(v *View) bool {
		if v.LocalPlayerName == name {
			return false
		}
		v.LocalPlayerName = name
		return true
	})
}

// SetStale flags whether the live channel is currently down.
func (m *ViewModel) SetStale(stale bool) bool {
	return m.update("SetStale", func(v *View) bool {
		if v.Stale == stale {
			return false
		}
		v.Stale = stale
		return true
	})
}

// Fail records a fatal error for the view.
func (m *ViewModel) Fail(err error) bool {
	return m.update("Fail", func(v *View) bool {
		if v.Err != nil {
			return false
		}
		v.Err = err
		return true
	})
}

// Dispose revokes the view model. Late results are dropped from then on.
func (m *ViewModel) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed.Store(true)
	m.listeners = nil
}

// Disposed reports whether Dispose was called.
func (m *ViewModel) Disposed() bool {
	return m.disposed.Load()
}

// update copies the current View, lets mutate change the copy and swaps it
// in. mutate returns false to leave the view untouched.
func (m *ViewModel) update(op string, mutate func(*View) bool) bool {
	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		logger.Debug.Printf("[ViewModel.%s] View disposed; discarding update", op)
		return false
	}

	next := *m.current.Load()
	if !mutate(&next) {
		m.mu.Unlock()
		return false
	}
	m.current.Store(&next)
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return true
}
