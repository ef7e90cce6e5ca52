// file: session/join.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"codenames-sync/api"
	"codenames-sync/logger"
	"codenames-sync/models"
)

// Coordinator submits joins and starts for one game on behalf of one
// session, keeping the ViewModel in step with every response.
type Coordinator struct {
	backend   api.Backend
	view      *ViewModel
	gameID    models.GameID
	sessionID models.SessionID
	inflight  singleflight.Group
}

// NewCoordinator binds a coordinator to a game, a session and a view.
func NewCoordinator(backend api.Backend, view *ViewModel, gameID models.GameID, sessionID models.SessionID) *Coordinator {
	return &Coordinator{
		backend:   backend,
		view:      view,
		gameID:    gameID,
		sessionID: sessionID,
	}
}

// Join seats this session in (color, role) under name.
//
// Re-joining the slot this session already holds is a no-op that returns
// the current state. Identical concurrent calls share one request. A
// successful response is merged into the view like any pushed update.
func (c *Coordinator) Join(ctx context.Context, name string, color models.ColorID, role models.RoleID) (models.GameState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.GameState{}, &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if _, err := models.ParseColorID(int(color)); err != nil {
		return models.GameState{}, err
	}
	if _, err := models.ParseRoleID(int(role)); err != nil {
		return models.GameState{}, err
	}
	if !color.IsTeam() {
		return models.GameState{}, &models.ValidationError{Field: "color", Reason: color.String() + " is not a team colour"}
	}
	slot := models.Slot{Color: color, Role: role}

	if gs, done, err := c.precheck(slot, name); done {
		if errors.Is(err, models.ErrSlotTaken) {
			c.refresh(ctx)
		}
		return gs, err
	}

	key := fmt.Sprintf("%d/%d/%s", color, role, name)
	v, err, shared := c.inflight.Do(key, func() (any, error) {
		return c.submit(ctx, slot, name)
	})
	if shared {
		logger.Debug.Printf("[Coordinator.Join] Collapsed duplicate join for game=%s slot=%s", c.gameID, slot)
	}
	if err != nil {
		if errors.Is(err, models.ErrSlotTaken) {
			c.refresh(ctx)
		}
		return models.GameState{}, err
	}
	return v.(models.GameState), nil
}

// precheck answers from the last known state when it can. done is false
// when the request must go to the backend.
func (c *Coordinator) precheck(slot models.Slot, name string) (gs models.GameState, done bool, err error) {
	held := c.view.Snapshot().GameState
	if held == nil {
		return gs, false, nil
	}

	if me, ok := held.PlayerBySession(c.sessionID); ok {
		if me.Slot() == slot && me.Name == name {
			logger.Debug.Printf("[Coordinator.precheck] Session already holds %s in game=%s; join is a no-op", slot, c.gameID)
			return held.Clone(), true, nil
		}
		if me.Slot() != slot {
			return gs, true, &models.ValidationError{
				Field:  "join",
				Reason: fmt.Sprintf("already joined as %s", me.Slot()),
			}
		}
		// same slot, new name: let the backend decide
		return gs, false, nil
	}

	for _, p := range held.Occupants(slot) {
		if p.SessionID != c.sessionID {
			return gs, true, &models.SlotTakenError{Slot: slot, Holder: p.Name}
		}
	}
	return gs, false, nil
}

func (c *Coordinator) submit(ctx context.Context, slot models.Slot, name string) (models.GameState, error) {
	logger.Info.Printf("[Coordinator.submit] Joining game=%s as %q in %s", c.gameID, name, slot)
	gs, err := c.backend.Join(ctx, c.gameID, api.JoinRequest{Name: name, Color: slot.Color, Role: slot.Role})
	if err != nil {
		logger.Warn.Printf("[Coordinator.submit] Join for game=%s slot=%s failed: %v", c.gameID, slot, err)
		return models.GameState{}, err
	}
	if gs.GameID == "" {
		gs.GameID = c.gameID
	}

	if c.view.Disposed() {
		// the view is gone; hand the result back without merging it
		return gs, nil
	}
	c.view.SetLocalPlayerName(name)
	c.view.ApplyState(gs)
	return c.current(gs), nil
}

// Start asks the backend to start the game. It refuses locally unless
// every slot is filled, whatever the UI allowed.
func (c *Coordinator) Start(ctx context.Context) error {
	held := c.view.Snapshot().GameState
	if !AllSlotsFilled(held) {
		logger.Warn.Printf("[Coordinator.Start] Refusing to start game=%s: open slots %v", c.gameID, OpenSlots(held))
		return &models.PreconditionError{Op: "start", Err: models.ErrNotReady}
	}
	if err := c.backend.Start(ctx, c.gameID); err != nil {
		return err
	}
	logger.Info.Printf("[Coordinator.Start] Game %s started", c.gameID)
	return nil
}

// refresh pulls a fresh snapshot so the caller retries against current data.
func (c *Coordinator) refresh(ctx context.Context) {
	gs, err := c.backend.FetchState(ctx, c.gameID)
	if err != nil {
		logger.Warn.Printf("[Coordinator.refresh] Could not refresh game=%s: %v", c.gameID, err)
		return
	}
	c.view.ApplyState(gs)
}

// current prefers the view's state, which may already be newer than fallback.
func (c *Coordinator) current(fallback models.GameState) models.GameState {
	if held := c.view.Snapshot().GameState; held != nil {
		return held.Clone()
	}
	return fallback
}
