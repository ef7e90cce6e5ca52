// file: session/readiness.go
package session

import "codenames-sync/models"

// AllSlotsFilled reports whether every team slot holds exactly one player
// and the four players are four distinct sessions.
func AllSlotsFilled(gs *models.GameState) bool {
	if gs == nil {
		return false
	}
	sessions := make(map[models.SessionID]bool, len(models.Slots))
	for _, slot := range models.Slots {
		occupants := gs.Occupants(slot)
		if len(occupants) != 1 {
			return false
		}
		sessions[occupants[0].SessionID] = true
	}
	return len(sessions) == len(models.Slots)
}

// OpenSlots lists the slots nobody holds yet.
func OpenSlots(gs *models.GameState) []models.Slot {
	var open []models.Slot
	for _, slot := range models.Slots {
		if gs == nil || len(gs.Occupants(slot)) == 0 {
			open = append(open, slot)
		}
	}
	return open
}
