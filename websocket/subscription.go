// file: websocket/subscription.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codenames-sync/logger"
	"codenames-sync/models"
)

// State is the lifecycle of a Subscription.
type State int

const (
	Idle State = iota
	Connecting
	Open
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config describes how to reach the update channel.
type Config struct {
	URL    string
	Header http.Header
	// LivenessTimeout is how long the channel may stay silent (no event, no
	// pong) before it is considered dead.
	LivenessTimeout time.Duration
	// PingPeriod defaults to 9/10 of LivenessTimeout.
	PingPeriod time.Duration
	Dialer     Dialer
}

func (c Config) withDefaults() Config {
	if c.LivenessTimeout <= 0 {
		c.LivenessTimeout = defaultLiveness
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.LivenessTimeout {
		c.PingPeriod = (c.LivenessTimeout * 9) / 10
	}
	if c.Dialer == nil {
		c.Dialer = NewDialer(nil)
	}
	return c
}

// Subscription is one server-push subscription scoped to a game. It never
// reconnects by itself: after an error it is terminal and a new
// Subscription must be created.
type Subscription struct {
	cfg     Config
	gameID  models.GameID
	onEvent func(models.GameState)
	onError func(error)

	mu     sync.Mutex
	state  State
	conn   WSConn
	cancel context.CancelFunc

	// held while onEvent runs so Close can wait for in-flight delivery
	deliverMu sync.Mutex
	done      chan struct{}
}

// Subscribe opens a subscription in the background. Every failure,
// including an unknown game, is reported through onError (at most once),
// never returned synchronously.
//
// onEvent and onError run on the subscription's goroutine. They must not
// call Close on the same subscription.
func Subscribe(cfg Config, gameID models.GameID, onEvent func(models.GameState), onError func(error)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		cfg:     cfg.withDefaults(),
		gameID:  gameID,
		onEvent: onEvent,
		onError: onError,
		state:   Connecting,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// State reports the current lifecycle state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the subscription's goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close releases the connection. It is idempotent, safe before the channel
// opened, and once it returns no further event is delivered.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.state == Closed || s.state == Errored {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	conn := s.conn
	s.mu.Unlock()

	s.cancel()
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}

	// wait out an event that was already being delivered
	s.deliverMu.Lock()
	s.deliverMu.Unlock()
	logger.Debug.Printf("[Subscription.Close] game=%s closed", s.gameID)
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)

	logger.Debug.Printf("[Subscription.run] Dialing %s for game=%s", s.cfg.URL, s.gameID)
	conn, resp, err := s.cfg.Dialer.DialContext(ctx, s.cfg.URL, s.cfg.Header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			s.fail(&models.NotFoundError{GameID: s.gameID})
		} else {
			s.fail(&models.NetworkError{Op: "subscribe", Err: err})
		}
		return
	}

	s.mu.Lock()
	if s.state != Connecting {
		// closed while dialing
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.state = Open
	s.conn = conn
	s.mu.Unlock()
	logger.Info.Printf("[Subscription.run] Channel open for game=%s (remote=%v)", s.gameID, conn.RemoteAddr())

	stop := make(chan struct{})
	go startHeartbeat(conn, s.cfg.PingPeriod, stop, s.gameID)

	err = s.readLoop(conn)
	close(stop)
	_ = conn.Close()
	s.fail(err)
}

func (s *Subscription) readLoop(conn WSConn) error {
	liveness := s.cfg.LivenessTimeout
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(liveness)); err != nil {
		return &models.NetworkError{Op: "subscribe", Err: err}
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(liveness))
	})

	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return &models.NetworkError{Op: "subscribe", Err: fmt.Errorf("no event or heartbeat within %s", liveness)}
			}
			return &models.NetworkError{Op: "subscribe", Err: err}
		}
		_ = conn.SetReadDeadline(time.Now().Add(liveness))

		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[Subscription.readLoop] Ignoring non-text messageType=%d", messageType)
			continue
		}

		gs, ok, err := decodeFrame(frame, s.gameID)
		if err != nil {
			if errors.Is(err, models.ErrUnknownEnumValue) {
				logger.Error.Printf("[Subscription.readLoop] game=%s: backend sent an unknown enum value: %v", s.gameID, err)
				return err
			}
			logger.Warn.Printf("[Subscription.readLoop] Invalid JSON for game=%s: %v", s.gameID, err)
			continue
		}
		if !ok {
			continue
		}
		s.deliver(gs)
	}
}

func (s *Subscription) deliver(gs models.GameState) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.State() != Open {
		return
	}
	s.onEvent(gs)
}

// fail moves an active subscription to Errored and reports err once. It
// does nothing after Close.
func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if s.state == Closed || s.state == Errored {
		s.mu.Unlock()
		return
	}
	s.state = Errored
	s.mu.Unlock()

	logger.Warn.Printf("[Subscription.fail] game=%s: %v", s.gameID, err)
	if s.onError != nil {
		s.onError(err)
	}
}
