// file: session/gameview.go
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"codenames-sync/api"
	"codenames-sync/identity"
	"codenames-sync/logger"
	"codenames-sync/models"
	"codenames-sync/websocket"
)

// Config tunes a GameView.
type Config struct {
	// LivenessTimeout bounds how long the channel may stay silent.
	LivenessTimeout time.Duration
	// Reconnect re-establishes the channel after an error, re-fetching a
	// fresh snapshot first.
	Reconnect            bool
	ReconnectInitial     time.Duration
	MaxReconnectInterval time.Duration
	// Dialer overrides the websocket dialer.
	Dialer websocket.Dialer
}

// GameView owns everything a mounted game screen needs: the view model, the
// live subscription and the join coordinator.
type GameView struct {
	gameID    models.GameID
	sessionID models.SessionID
	backend   api.Backend
	cfg       Config
	view      *ViewModel
	coord     *Coordinator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	sub    *websocket.Subscription
	closed bool
	// spaces out successive reconnects; reset by any delivered event
	retry *backoff.ExponentialBackOff
}

// Mount enters a game view: it ensures the session id, then loads the board
// and opens the live channel concurrently. It does not wait for either.
func Mount(ctx context.Context, gameID models.GameID, backend api.Backend, ids *identity.Provider, cfg Config) *GameView {
	sessionID := ids.EnsureSessionID()
	view := NewViewModel(sessionID)

	gctx, cancel := context.WithCancel(ctx)
	gv := &GameView{
		gameID:    gameID,
		sessionID: sessionID,
		backend:   backend,
		cfg:       cfg,
		view:      view,
		coord:     NewCoordinator(backend, view, gameID, sessionID),
		ctx:       gctx,
		cancel:    cancel,
		retry:     newBackOff(cfg),
	}
	logger.Info.Printf("[Mount] Mounting game=%s session=%s", gameID, sessionID)

	gv.wg.Add(1)
	go gv.loadBoard(context.WithoutCancel(ctx))
	gv.openChannel()
	return gv
}

// View is the view model the render layer reads from.
func (gv *GameView) View() *ViewModel { return gv.view }

// Snapshot is shorthand for View().Snapshot().
func (gv *GameView) Snapshot() View { return gv.view.Snapshot() }

// GameID returns the mounted game.
func (gv *GameView) GameID() models.GameID { return gv.gameID }

// Join seats this session; see Coordinator.Join.
func (gv *GameView) Join(ctx context.Context, name string, color models.ColorID, role models.RoleID) (models.GameState, error) {
	return gv.coord.Join(ctx, name, color, role)
}

// Start starts the game; see Coordinator.Start.
func (gv *GameView) Start(ctx context.Context) error {
	return gv.coord.Start(ctx)
}

// Close unmounts the view: the subscription is closed and the view model
// revoked. Requests already in flight still complete, but their results
// are dropped.
func (gv *GameView) Close() {
	gv.mu.Lock()
	if gv.closed {
		gv.mu.Unlock()
		return
	}
	gv.closed = true
	sub := gv.sub
	gv.mu.Unlock()

	gv.cancel()
	if sub != nil {
		sub.Close()
	}
	gv.view.Dispose()
	logger.Info.Printf("[GameView.Close] Unmounted game=%s", gv.gameID)
}

// Wait blocks until the board load and any reconnect loop have returned.
// Call it only after Close: reconnects are started on channel errors until
// the view is closed, and none are started afterwards.
func (gv *GameView) Wait() {
	gv.wg.Wait()
}

func (gv *GameView) loadBoard(ctx context.Context) {
	defer gv.wg.Done()

	words, err := gv.backend.LoadBoard(ctx, gv.gameID)
	if gv.view.Disposed() {
		logger.Debug.Printf("[GameView.loadBoard] View for game=%s closed; discarding board result", gv.gameID)
		return
	}
	if err != nil {
		logger.Error.Printf("[GameView.loadBoard] game=%s: %v", gv.gameID, err)
		gv.view.Fail(err)
		return
	}
	gv.view.SetBoard(words)
}

func (gv *GameView) openChannel() {
	gv.mu.Lock()
	defer gv.mu.Unlock()
	if gv.closed {
		return
	}

	header := http.Header{}
	header.Add("Cookie", (&http.Cookie{Name: api.SessionCookie, Value: gv.sessionID}).String())

	gv.sub = websocket.Subscribe(websocket.Config{
		URL:             gv.backend.UpdatesURL(gv.gameID),
		Header:          header,
		LivenessTimeout: gv.cfg.LivenessTimeout,
		Dialer:          gv.cfg.Dialer,
	}, gv.gameID, gv.onEvent, gv.onChannelError)
}

func (gv *GameView) onEvent(gs models.GameState) {
	gv.view.ApplyState(gs)
	gv.view.SetStale(false)

	gv.mu.Lock()
	gv.retry.Reset()
	gv.mu.Unlock()
}

func (gv *GameView) onChannelError(err error) {
	gv.view.SetStale(true)

	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUnknownEnumValue) {
		gv.view.Fail(err)
		return
	}
	if !gv.cfg.Reconnect {
		return
	}

	gv.mu.Lock()
	defer gv.mu.Unlock()
	if gv.closed {
		return
	}
	gv.wg.Add(1)
	go gv.reconnect()
}

// reconnect retries with exponential backoff until a fresh snapshot is
// fetched, then opens a new subscription. Missed events are not replayed by
// the channel, so the snapshot comes first.
func (gv *GameView) reconnect() {
	defer gv.wg.Done()

	gv.mu.Lock()
	wait := gv.retry.NextBackOff()
	gv.mu.Unlock()
	select {
	case <-gv.ctx.Done():
		return
	case <-time.After(wait):
	}

	op := func() error {
		gs, err := gv.backend.FetchState(gv.ctx, gv.gameID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}
		gv.view.ApplyState(gs)
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn.Printf("[GameView.reconnect] game=%s snapshot failed (%v); retrying in %s", gv.gameID, err, wait)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(newBackOff(gv.cfg), gv.ctx), notify); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			gv.view.Fail(err)
		}
		logger.Info.Printf("[GameView.reconnect] game=%s giving up: %v", gv.gameID, err)
		return
	}
	logger.Info.Printf("[GameView.reconnect] game=%s resynchronised; resubscribing", gv.gameID)
	gv.openChannel()
}

func newBackOff(cfg Config) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if cfg.ReconnectInitial > 0 {
		b.InitialInterval = cfg.ReconnectInitial
	}
	if cfg.MaxReconnectInterval > 0 {
		b.MaxInterval = cfg.MaxReconnectInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
