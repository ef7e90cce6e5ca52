package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codenames-sync/api"
	"codenames-sync/models"
)

func newTestCoordinator(sessionID models.SessionID) (*Coordinator, *api.MockBackend, *ViewModel) {
	backend := new(api.MockBackend)
	view := NewViewModel(sessionID)
	return NewCoordinator(backend, view, "42", sessionID), backend, view
}

var bobJoin = api.JoinRequest{Name: "Bob", Color: models.Red, Role: models.Spymaster}

func TestJoin_MergesResponse(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	backend.On("Join", mock.Anything, models.GameID("42"), bobJoin).Return(stateV(2, bob), nil).Once()

	gs, err := c.Join(context.Background(), " Bob ", models.Red, models.Spymaster)
	require.NoError(t, err)
	assert.Len(t, gs.Players, 1)

	snap := view.Snapshot()
	assert.Equal(t, "Bob", snap.LocalPlayerName)
	assert.Equal(t, uint64(2), snap.GameState.Version)
	backend.AssertExpectations(t)
}

func TestJoin_RepeatIsNoOp(t *testing.T) {
	c, backend, _ := newTestCoordinator("s-bob")
	backend.On("Join", mock.Anything, models.GameID("42"), bobJoin).Return(stateV(2, bob), nil).Once()

	first, err := c.Join(context.Background(), "Bob", models.Red, models.Spymaster)
	require.NoError(t, err)
	second, err := c.Join(context.Background(), "Bob", models.Red, models.Spymaster)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second.Players, 1)
	backend.AssertNumberOfCalls(t, "Join", 1)
}

func TestJoin_ConcurrentDuplicatesSeatOnce(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	backend.On("Join", mock.Anything, models.GameID("42"), bobJoin).Return(stateV(2, bob), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Join(context.Background(), "Bob", models.Red, models.Spymaster)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	players := view.Snapshot().GameState.Players
	assert.Equal(t, []models.Player{bob}, players)
}

func TestJoin_Validation(t *testing.T) {
	c, backend, _ := newTestCoordinator("s-bob")
	ctx := context.Background()

	_, err := c.Join(ctx, "   ", models.Red, models.Agent)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = c.Join(ctx, "Bob", models.Neutral, models.Agent)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = c.Join(ctx, "Bob", models.ColorID(9), models.Agent)
	assert.ErrorIs(t, err, models.ErrUnknownEnumValue)

	_, err = c.Join(ctx, "Bob", models.Red, models.RoleID(7))
	assert.ErrorIs(t, err, models.ErrUnknownEnumValue)

	backend.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoin_KnownOccupantIsSlotTaken(t *testing.T) {
	c, backend, view := newTestCoordinator("s-dave")
	view.ApplyState(stateV(3, bob))
	backend.On("FetchState", mock.Anything, models.GameID("42")).Return(stateV(4, bob, carol), nil).Once()

	_, err := c.Join(context.Background(), "Dave", models.Red, models.Spymaster)
	var taken *models.SlotTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "Bob", taken.Holder)

	// the refresh landed in the view
	assert.Equal(t, uint64(4), view.Snapshot().GameState.Version)
	backend.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
	backend.AssertExpectations(t)
}

func TestJoin_BackendSlotTakenRefreshes(t *testing.T) {
	c, backend, view := newTestCoordinator("s-dave")
	req := api.JoinRequest{Name: "Dave", Color: models.Red, Role: models.Spymaster}
	backend.On("Join", mock.Anything, models.GameID("42"), req).
		Return(models.GameState{}, &models.SlotTakenError{Slot: models.Slot{Color: models.Red, Role: models.Spymaster}}).Once()
	backend.On("FetchState", mock.Anything, models.GameID("42")).Return(stateV(5, bob), nil).Once()

	_, err := c.Join(context.Background(), "Dave", models.Red, models.Spymaster)
	assert.ErrorIs(t, err, models.ErrSlotTaken)
	assert.Equal(t, []models.Player{bob}, view.Snapshot().GameState.Players)
	backend.AssertExpectations(t)
}

func TestJoin_AlreadySeatedElsewhere(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	view.ApplyState(stateV(1, bob))

	_, err := c.Join(context.Background(), "Bob", models.Blue, models.Agent)
	assert.ErrorIs(t, err, models.ErrValidation)
	backend.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoin_DisposedViewUntouched(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	backend.On("Join", mock.Anything, models.GameID("42"), bobJoin).Return(stateV(2, bob), nil).Once()
	view.Dispose()

	gs, err := c.Join(context.Background(), "Bob", models.Red, models.Spymaster)
	require.NoError(t, err)
	assert.Len(t, gs.Players, 1)
	assert.Nil(t, view.Snapshot().GameState)
	assert.Empty(t, view.Snapshot().LocalPlayerName)
}

func TestStart_RequiresAllSlots(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	view.ApplyState(stateV(1, dave, bob, carol))

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, models.ErrNotReady)
	var pre *models.PreconditionError
	assert.ErrorAs(t, err, &pre)
	backend.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)

	backend.On("Start", mock.Anything, models.GameID("42")).Return(nil).Once()
	view.ApplyState(stateV(2, dave, bob, carol, erin))
	require.NoError(t, c.Start(context.Background()))
	backend.AssertExpectations(t)
}

func TestStart_PropagatesBackendError(t *testing.T) {
	c, backend, view := newTestCoordinator("s-bob")
	view.ApplyState(stateV(1, dave, bob, carol, erin))
	backend.On("Start", mock.Anything, models.GameID("42")).
		Return(&models.PreconditionError{Op: "start", Err: models.ErrNotReady}).Once()

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, models.ErrNotReady)
}
