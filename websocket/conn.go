// Package websocket carries GameState updates: the client-side live state
// channel and the server-side hub that feeds it.
// file: websocket/conn.go
package websocket

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn is the subset of *websocket.Conn used by both sides.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Dialer opens client connections.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (WSConn, *http.Response, error)
}

// gorillaDialer adapts *websocket.Dialer to Dialer.
type gorillaDialer struct {
	d *websocket.Dialer
}

// NewDialer wraps a gorilla dialer; nil means websocket.DefaultDialer.
func NewDialer(d *websocket.Dialer) Dialer {
	if d == nil {
		d = websocket.DefaultDialer
	}
	return gorillaDialer{d: d}
}

func (g gorillaDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (WSConn, *http.Response, error) {
	conn, resp, err := g.d.DialContext(ctx, urlStr, header)
	if err != nil {
		return nil, resp, err
	}
	return conn, resp, nil
}

// Configuration constants.
const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 64 << 10
	sendBufferSize  = 64
	maxFailedPings  = 3
	defaultLiveness = pongWait
)
