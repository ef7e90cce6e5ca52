// Package services holds the reference backend's game bookkeeping.
// file: services/game_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"codenames-sync/logger"
	"codenames-sync/metrics"
	"codenames-sync/models"
)

// ErrGameStarted is returned when a join arrives after the game started.
var ErrGameStarted = errors.New("game already started")

// Broadcaster pushes a changed GameState to its subscribers.
type Broadcaster interface {
	Publish(gs models.GameState)
}

// GameServiceInterface is what the controllers need from the game store.
type GameServiceInterface interface {
	CreateGame(name string, creator models.SessionID) (models.GameID, error)
	Words(gameID models.GameID) ([]models.Word, error)
	Join(gameID models.GameID, sessionID models.SessionID, name string, color models.ColorID, role models.RoleID) (models.GameState, error)
	Start(gameID models.GameID, sessionID models.SessionID) (models.GameState, error)
	State(gameID models.GameID) (models.GameState, error)
}

type game struct {
	name    string
	creator models.SessionID
	words   []models.Word
	state   models.GameState
}

// GameService keeps every game in memory. It is the single authority on
// slot occupancy: two sessions can never hold the same slot.
type GameService struct {
	mu          sync.Mutex
	games       map[models.GameID]*game
	names       map[string]models.GameID
	nextID      int
	broadcaster Broadcaster
	metrics     metrics.Publisher
}

// Option configures a GameService.
type Option func(*GameService)

// WithFirstID sets the id of the first created game.
func WithFirstID(id int) Option {
	return func(s *GameService) { s.nextID = id }
}

// WithMetrics sets the metrics publisher.
func WithMetrics(p metrics.Publisher) Option {
	return func(s *GameService) { s.metrics = p }
}

// NewGameService creates an empty store.
func NewGameService(opts ...Option) *GameService {
	s := &GameService{
		games:   make(map[models.GameID]*game),
		names:   make(map[string]models.GameID),
		nextID:  1,
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBroadcaster wires the update hub once it exists. The hub reads states
// from the service, so it is created second.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// CreateGame registers a new game under a unique name and deals its board.
func (s *GameService) CreateGame(name string, creator models.SessionID) (models.GameID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &models.CreationError{Name: name, Reason: "name must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[strings.ToLower(name)]; exists {
		logger.Warn.Printf("[GameService.CreateGame] Game %q already exists", name)
		return "", &models.CreationError{Name: name, Reason: fmt.Sprintf("the game %s already exists", name)}
	}

	id := models.GameID(fmt.Sprint(s.nextID))
	s.nextID++
	s.games[id] = &game{
		name:    name,
		creator: creator,
		words:   Deal(int64(s.nextID - 1)),
		state:   models.GameState{GameID: id, Players: []models.Player{}, Version: 1},
	}
	s.names[strings.ToLower(name)] = id
	logger.Info.Printf("[GameService.CreateGame] Created game %q id=%s", name, id)
	return id, nil
}

// Words returns the board of a game.
func (s *GameService) Words(gameID models.GameID) ([]models.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil, &models.NotFoundError{GameID: gameID}
	}
	return append([]models.Word(nil), g.words...), nil
}

// State returns a copy of the current state.
func (s *GameService) State(gameID models.GameID) (models.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	}
	return g.state.Clone(), nil
}

// Join seats sessionID in (color, role). A repeat of the same join is
// answered with the current state and changes nothing.
func (s *GameService) Join(gameID models.GameID, sessionID models.SessionID, name string, color models.ColorID, role models.RoleID) (models.GameState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Anonymous"
	}
	if !color.IsTeam() {
		return models.GameState{}, &models.ValidationError{Field: "color_id", Reason: fmt.Sprintf("invalid color / role combination: color = %d, role = %d", color, role)}
	}
	if _, err := models.ParseRoleID(int(role)); err != nil {
		return models.GameState{}, &models.ValidationError{Field: "role_id", Reason: fmt.Sprintf("invalid color / role combination: color = %d, role = %d", color, role)}
	}
	slot := models.Slot{Color: color, Role: role}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	}
	logger.Info.Printf("[GameService.Join] Session %s asks for %s in game=%s as %q", sessionID, slot, gameID, name)

	if me, ok := g.state.PlayerBySession(sessionID); ok {
		if me.Slot() != slot {
			return models.GameState{}, &models.ValidationError{Field: "join", Reason: "this user has already joined the game"}
		}
		if me.Name == name {
			return g.state.Clone(), nil
		}
		// same seat, new name
		next := g.state.Clone()
		for i := range next.Players {
			if next.Players[i].SessionID == sessionID {
				next.Players[i].Name = name
			}
		}
		s.commitLocked(g, next)
		return next.Clone(), nil
	}

	if g.state.Started {
		return models.GameState{}, &models.PreconditionError{Op: "join", Err: ErrGameStarted}
	}
	if holders := g.state.Occupants(slot); len(holders) > 0 {
		logger.Warn.Printf("[GameService.Join] %s in game=%s already held by %q", slot, gameID, holders[0].Name)
		return models.GameState{}, &models.SlotTakenError{Slot: slot, Holder: holders[0].Name}
	}

	next := g.state.Clone()
	next.Players = append(next.Players, models.Player{Name: name, Color: color, Role: role, SessionID: sessionID})
	s.commitLocked(g, next)
	s.metrics.PlayersJoined(string(gameID), len(next.Players))
	return next.Clone(), nil
}

// Start starts a game once all four slots are held. Starting a running
// game is a no-op.
func (s *GameService) Start(gameID models.GameID, sessionID models.SessionID) (models.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return models.GameState{}, &models.NotFoundError{GameID: gameID}
	}
	if g.state.Started {
		return g.state.Clone(), nil
	}
	if open := openSlots(g.state); len(open) > 0 {
		logger.Warn.Printf("[GameService.Start] Session %s tried to start game=%s with open slots %v", sessionID, gameID, open)
		return models.GameState{}, &models.PreconditionError{Op: "start", Err: fmt.Errorf("%w: open slots %v", models.ErrNotReady, open)}
	}

	next := g.state.Clone()
	next.Started = true
	s.commitLocked(g, next)
	s.metrics.GameStarted(string(gameID))
	logger.Info.Printf("[GameService.Start] Game %s started by session %s", gameID, sessionID)
	return next.Clone(), nil
}

// commitLocked bumps the version, stores next and publishes it. Publishing
// under the lock keeps pushes in version order.
func (s *GameService) commitLocked(g *game, next models.GameState) {
	next.Version = g.state.Version + 1
	g.state = next
	if s.broadcaster != nil {
		s.broadcaster.Publish(next.Clone())
	}
}

func openSlots(gs models.GameState) []models.Slot {
	var open []models.Slot
	for _, slot := range models.Slots {
		if len(gs.Occupants(slot)) != 1 {
			open = append(open, slot)
		}
	}
	return open
}
