// File: models/game.go
package models

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

// ----------------------- identifiers -----------------------

// GameID is assigned by the backend when a game is created. The backend may
// send it as a number or a string; both decode to the same value.
type GameID string

// UnmarshalJSON accepts both `42` and `"42"`.
func (g *GameID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GameID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*g = GameID(n.String())
	return nil
}

func (g GameID) String() string { return string(g) }

// SessionID is the anonymous per-client identity (a UUID string).
type SessionID = string

// ----------------------- board -----------------------

// BoardSize is the number of words on a board.
const BoardSize = 25

// Word is a single board card.
type Word struct {
	Text  string  `json:"word"`
	Color ColorID `json:"color"`
}

// ----------------------- players & slots -----------------------

// Slot is a (colour, role) pair. At most one player may occupy a slot.
type Slot struct {
	Color ColorID
	Role  RoleID
}

func (s Slot) String() string {
	return s.Color.String() + "/" + s.Role.String()
}

// Slots lists every joinable slot in a game.
var Slots = []Slot{
	{Red, Agent},
	{Red, Spymaster},
	{Blue, Agent},
	{Blue, Spymaster},
}

// Player is a participant occupying one slot.
type Player struct {
	Name      string    `json:"name"`
	Color     ColorID   `json:"color_id"`
	Role      RoleID    `json:"role_id"`
	SessionID SessionID `json:"session_id"`
}

// Slot returns the slot the player occupies.
func (p Player) Slot() Slot {
	return Slot{Color: p.Color, Role: p.Role}
}

// ----------------------- game state -----------------------

// GameState is the authoritative backend state. Version is a monotonic
// marker; zero means the producer did not send one.
type GameState struct {
	GameID  GameID   `json:"game_id"`
	Players []Player `json:"players"`
	Started bool     `json:"started"`
	Version uint64   `json:"version,omitempty"`
}

// Occupants returns every player in the given slot. A well-formed state has
// at most one.
func (s GameState) Occupants(slot Slot) []Player {
	var out []Player
	for _, p := range s.Players {
		if p.Slot() == slot {
			out = append(out, p)
		}
	}
	return out
}

// PlayerBySession finds the player joined under sessionID.
func (s GameState) PlayerBySession(sessionID SessionID) (Player, bool) {
	for _, p := range s.Players {
		if p.SessionID == sessionID {
			return p, true
		}
	}
	return Player{}, false
}

// Clone returns a deep copy.
func (s GameState) Clone() GameState {
	c := s
	c.Players = slices.Clone(s.Players)
	return c
}

// Equal compares two states structurally, ignoring Version. Players compare
// as a multiset: order is ignored, duplicates are counted.
func (s GameState) Equal(o GameState) bool {
	if s.GameID != o.GameID || s.Started != o.Started || len(s.Players) != len(o.Players) {
		return false
	}
	counts := make(map[Player]int, len(s.Players))
	for _, p := range s.Players {
		counts[p]++
	}
	for _, p := range o.Players {
		if counts[p] == 0 {
			return false
		}
		counts[p]--
	}
	return true
}

func itoa(v int) string { return strconv.Itoa(v) }
