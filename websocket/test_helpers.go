// websocket/test_helpers.go
package websocket

import (
	"sync"

	"codenames-sync/models"
)

// MemoryStates is a StateProvider backed by a map, for tests and demos.
type MemoryStates struct {
	mu     sync.Mutex
	states map[models.GameID]models.GameState
}

func NewMemoryStates(states ...models.GameState) *MemoryStates {
	m := &MemoryStates{states: make(map[models.GameID]models.GameState)}
	for _, gs := range states {
		m.states[gs.GameID] = gs
	}
	return m
}

func (m *MemoryStates) Put(gs models.GameState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[gs.GameID] = gs
}

func (m *MemoryStates) State(gameID models.GameID) (models.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, ok := m.states[gameID]
	if !ok {
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	}
	return gs.Clone(), nil
}
