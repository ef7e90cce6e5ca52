//go:build integration
// +build integration

// integration/scenario_test.go
package integration

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenames-sync/api"
	"codenames-sync/controllers"
	"codenames-sync/identity"
	"codenames-sync/models"
	"codenames-sync/services"
	"codenames-sync/session"
	"codenames-sync/websocket"
)

// startBackend runs the reference backend on a test server.
func startBackend(t *testing.T) (*httptest.Server, *services.GameService, *websocket.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	games := services.NewGameService(services.WithFirstID(42))
	hub := websocket.NewHub(games, nil)
	games.SetBroadcaster(hub)
	srv := httptest.NewServer(controllers.NewRouter(controllers.NewGameController(games, hub, "http://example.test")))
	t.Cleanup(srv.Close)
	return srv, games, hub
}

func newClient(t *testing.T, srv *httptest.Server) (*api.Client, *identity.Provider) {
	t.Helper()
	ids := identity.NewProvider(identity.NewMemoryStore())
	client, err := api.NewClient(srv.URL, api.WithSessionID(ids.EnsureSessionID))
	require.NoError(t, err)
	return client, ids
}

// history records every published view.
type history struct {
	mu    sync.Mutex
	views []session.View
}

func (h *history) add(v session.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = append(h.views, v)
}

func (h *history) all() []session.View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]session.View(nil), h.views...)
}

func TestLobbyScenario(t *testing.T) {
	srv, _, hub := startBackend(t)
	client, ids := newClient(t, srv)
	ctx := context.Background()

	id, err := client.CreateGame(ctx, "Test")
	require.NoError(t, err)
	assert.Equal(t, models.GameID("42"), id)

	words, err := client.LoadBoard(ctx, id)
	require.NoError(t, err)
	assert.Len(t, words, models.BoardSize)

	gv := session.Mount(ctx, id, client, ids, session.Config{})
	defer gv.Close()
	hist := &history{}
	gv.View().OnChange(hist.add)

	require.Eventually(t, func() bool {
		v := gv.Snapshot()
		return len(v.Board) == models.BoardSize && v.GameState != nil
	}, 5*time.Second, 10*time.Millisecond)

	gs, err := gv.Join(ctx, "Bob", models.Red, models.Spymaster)
	require.NoError(t, err)
	require.Len(t, gs.Players, 1)
	joined := gv.Snapshot().GameState.Version

	// older push: ignored
	hub.Publish(models.GameState{GameID: id, Players: []models.Player{}, Version: joined - 1})

	// newer push adding Carol
	carol := models.Player{Name: "Carol", Color: models.Blue, Role: models.Agent, SessionID: "carol-session"}
	newer := gs.Clone()
	newer.Players = append(newer.Players, carol)
	newer.Version = joined + 1
	hub.Publish(newer)

	require.Eventually(t, func() bool {
		v := gv.Snapshot()
		return v.GameState != nil && len(v.GameState.Players) == 2
	}, 5*time.Second, 10*time.Millisecond)

	names := []string{}
	for _, p := range gv.Snapshot().GameState.Players {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Bob", "Carol"}, names)

	for _, v := range hist.all() {
		if v.GameState != nil && v.GameState.Version >= joined {
			assert.NotEmpty(t, v.GameState.Players, "older push must never replace the joined state")
		}
	}
}

func TestFourPlayersStart(t *testing.T) {
	srv, games, _ := startBackend(t)
	ctx := context.Background()

	creator, _ := newClient(t, srv)
	id, err := creator.CreateGame(ctx, "Full table")
	require.NoError(t, err)

	var views []*session.GameView
	for i, slot := range models.Slots {
		client, ids := newClient(t, srv)
		gv := session.Mount(ctx, id, client, ids, session.Config{})
		defer gv.Close()
		require.Eventually(t, func() bool { return gv.Snapshot().GameState != nil }, 5*time.Second, 10*time.Millisecond)

		_, err := gv.Join(ctx, string(rune('A'+i)), slot.Color, slot.Role)
		require.NoError(t, err)

		// a second identical join changes nothing
		_, err = gv.Join(ctx, string(rune('A'+i)), slot.Color, slot.Role)
		require.NoError(t, err)
		views = append(views, gv)
	}

	first := views[0]
	require.Eventually(t, func() bool { return first.Snapshot().Ready() }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, first.Start(ctx))

	for _, gv := range views {
		gv := gv
		require.Eventually(t, func() bool {
			gs := gv.Snapshot().GameState
			return gs != nil && gs.Started
		}, 5*time.Second, 10*time.Millisecond)
	}

	gs, err := games.State(id)
	require.NoError(t, err)
	assert.Len(t, gs.Players, 4)
}

func TestSlotTakenAcrossClients(t *testing.T) {
	srv, _, _ := startBackend(t)
	ctx := context.Background()

	bobClient, bobIDs := newClient(t, srv)
	id, err := bobClient.CreateGame(ctx, "Contested")
	require.NoError(t, err)

	bob := session.Mount(ctx, id, bobClient, bobIDs, session.Config{})
	defer bob.Close()
	daveClient, daveIDs := newClient(t, srv)
	dave := session.Mount(ctx, id, daveClient, daveIDs, session.Config{})
	defer dave.Close()

	_, err = bob.Join(ctx, "Bob", models.Red, models.Spymaster)
	require.NoError(t, err)

	// dave may not have seen Bob's push yet; the backend still refuses
	_, err = dave.Join(ctx, "Dave", models.Red, models.Spymaster)
	assert.ErrorIs(t, err, models.ErrSlotTaken)

	require.Eventually(t, func() bool {
		gs := dave.Snapshot().GameState
		return gs != nil && len(gs.Players) == 1 && gs.Players[0].Name == "Bob"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestUnknownGame(t *testing.T) {
	srv, _, _ := startBackend(t)
	client, ids := newClient(t, srv)

	gv := session.Mount(context.Background(), "999", client, ids, session.Config{})
	defer gv.Close()

	require.Eventually(t, func() bool { return gv.Snapshot().Err != nil }, 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, gv.Snapshot().Err, models.ErrNotFound)
}
