// Package session keeps a client's view of one game consistent while HTTP
// responses and pushed updates race each other.
// file: session/merge.go
package session

import "codenames-sync/models"

// Merge decides whether incoming replaces held and returns the state to
// keep. It never mutates its arguments.
//
// held.Version is always the highest version the backend has stamped on a
// state seen so far. A versioned state wins only when strictly newer than
// that. A state without a version marker replaces held unless it is
// structurally equal to it, and inherits held.Version: it never raises the
// bar for the next versioned push.
func Merge(held *models.GameState, incoming models.GameState) (models.GameState, bool) {
	if held == nil {
		return incoming.Clone(), true
	}

	if incoming.Version == 0 {
		if held.Equal(incoming) {
			return *held, false
		}
		next := incoming.Clone()
		next.Version = held.Version
		return next, true
	}

	if incoming.Version <= held.Version {
		return *held, false
	}
	return incoming.Clone(), true
}
