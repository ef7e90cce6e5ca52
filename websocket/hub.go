// file: websocket/hub.go
package websocket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"codenames-sync/logger"
	"codenames-sync/metrics"
	"codenames-sync/models"
)

// StateProvider returns the current state of a game, or a NotFoundError.
type StateProvider interface {
	State(gameID models.GameID) (models.GameState, error)
}

// Hub fans GameState updates out to every subscriber of a game.
type Hub struct {
	mu       sync.Mutex
	subs     map[models.GameID]map[*Connection]bool
	states   StateProvider
	metrics  metrics.Publisher
	upgrader websocket.Upgrader
}

// NewHub creates a hub. states supplies the snapshot sent on connect.
func NewHub(states StateProvider, pub metrics.Publisher) *Hub {
	if pub == nil {
		pub = metrics.Nop{}
	}
	return &Hub{
		subs:    make(map[models.GameID]map[*Connection]bool),
		states:  states,
		metrics: pub,
		upgrader: websocket.Upgrader{
			// the update stream is read-only and carries no credentials
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWs upgrades the request and subscribes it to gameID. Unknown games
// are rejected with 404 before the upgrade.
//
// The subscriber is registered before the snapshot is read, so a publish
// racing the read is queued ahead of the snapshot rather than lost. The
// client drops whichever of the two is older.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, gameID models.GameID) {
	c := &Connection{
		send:   make(chan []byte, sendBufferSize),
		gameID: gameID,
		hub:    h,
	}
	h.register(c)

	current, err := h.states.State(gameID)
	if err != nil {
		h.unregister(c)
		if errors.Is(err, models.ErrNotFound) {
			logger.Warn.Printf("[Hub.ServeWs] Rejecting subscription to unknown game=%s", gameID)
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		logger.Error.Printf("[Hub.ServeWs] Loading state for game=%s: %v", gameID, err)
		http.Error(w, "could not load game", http.StatusInternalServerError)
		return
	}

	logger.Info.Printf("[Hub.ServeWs] Upgrading to WS: remoteAddr=%v, game=%s", r.RemoteAddr, gameID)
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logger.Error.Printf("[Hub.ServeWs] WebSocket upgrade error: %v", err)
		h.unregister(c)
		return
	}
	c.conn = wsConn

	if !h.enqueue(c, current) {
		_ = wsConn.Close()
		return
	}
	go c.readPump()
	go c.writePump()
}

// Publish sends gs to every subscriber of its game. Slow subscribers whose
// buffer is full are dropped; they reconnect and resynchronise.
func (h *Hub) Publish(gs models.GameState) {
	msg, err := EncodeState(gs)
	if err != nil {
		logger.Error.Printf("[Hub.Publish] Error marshalling state for game=%s: %v", gs.GameID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs[gs.GameID] {
		select {
		case c.send <- msg:
		default:
			logger.Warn.Printf("[Hub.Publish] Dropping slow subscriber for game=%s", gs.GameID)
			h.removeLocked(c)
		}
	}
	logger.Debug.Printf("[Hub.Publish] game=%s version=%d subscribers=%d", gs.GameID, gs.Version, len(h.subs[gs.GameID]))
}

// Subscribers reports how many connections follow gameID.
func (h *Hub) Subscribers(gameID models.GameID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// register adds c to its game. Publishes reach it from here on.
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[c.gameID]
	if !ok {
		set = make(map[*Connection]bool)
		h.subs[c.gameID] = set
	}
	set[c] = true
	h.metrics.SubscriberCount(string(c.gameID), len(set))
}

// enqueue queues the snapshot for c. It reports false when c was dropped in
// the meantime.
func (h *Hub) enqueue(c *Connection, current models.GameState) bool {
	msg, err := EncodeState(current)
	if err != nil {
		logger.Error.Printf("[Hub.enqueue] Error marshalling state for game=%s: %v", current.GameID, err)
		h.unregister(c)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.subs[c.gameID][c] {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		h.removeLocked(c)
		return false
	}
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Connection) {
	set := h.subs[c.gameID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.subs, c.gameID)
	}
	h.metrics.SubscriberCount(string(c.gameID), len(set))
}
