// websocket/heartbeat.go
package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"codenames-sync/logger"
	"codenames-sync/models"
)

// startHeartbeat pings the server every period until stop is closed. After
// maxFailedPings consecutive failures it closes the connection, which ends
// the read loop with an error.
func startHeartbeat(conn WSConn, period time.Duration, stop <-chan struct{}, gameID models.GameID) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	failedPings := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				failedPings++
				logger.Warn.Printf("[startHeartbeat] game=%s ping failed (%d/%d): %v", gameID, failedPings, maxFailedPings, err)
				if failedPings >= maxFailedPings {
					logger.Error.Printf("[startHeartbeat] game=%s connection lost due to repeated ping failures", gameID)
					_ = conn.Close()
					return
				}
				continue
			}
			failedPings = 0
		}
	}
}
