// file: websocket/envelope.go
package websocket

import (
	"encoding/json"

	"codenames-sync/models"
)

// EventNewMessage names a GameState push on the wire.
const EventNewMessage = "new_message"

// Envelope wraps a pushed GameState so one connection can multiplex events.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeState wraps gs in a new_message envelope.
func EncodeState(gs models.GameState) ([]byte, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: EventNewMessage, Data: data})
}

// decodeFrame extracts the GameState from a frame. Frames may be an envelope
// or a bare GameState. ok is false for other events and for states that
// belong to a different game.
func decodeFrame(frame []byte, gameID models.GameID) (gs models.GameState, ok bool, err error) {
	var probe Envelope
	if err := json.Unmarshal(frame, &probe); err != nil {
		return gs, false, err
	}

	payload := frame
	if probe.Event != "" {
		if probe.Event != EventNewMessage {
			return gs, false, nil
		}
		payload = probe.Data
	}

	if err := json.Unmarshal(payload, &gs); err != nil {
		return gs, false, err
	}
	if gameID != "" && gs.GameID != "" && gs.GameID != gameID {
		return gs, false, nil
	}
	if gs.GameID == "" {
		gs.GameID = gameID
	}
	return gs, true, nil
}
