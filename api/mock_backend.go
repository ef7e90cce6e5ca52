// file: api/mock_backend.go
package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"codenames-sync/models"
)

// make sure MockBackend satisfies Backend
var _ Backend = (*MockBackend)(nil)

// MockBackend is a testify mock of the backend calls.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateGame(ctx context.Context, name string) (models.GameID, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.GameID), args.Error(1)
}

func (m *MockBackend) LoadBoard(ctx context.Context, gameID models.GameID) ([]models.Word, error) {
	args := m.Called(ctx, gameID)
	words, _ := args.Get(0).([]models.Word)
	return words, args.Error(1)
}

func (m *MockBackend) Join(ctx context.Context, gameID models.GameID, req JoinRequest) (models.GameState, error) {
	args := m.Called(ctx, gameID, req)
	return args.Get(0).(models.GameState), args.Error(1)
}

func (m *MockBackend) Start(ctx context.Context, gameID models.GameID) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockBackend) FetchState(ctx context.Context, gameID models.GameID) (models.GameState, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(models.GameState), args.Error(1)
}

func (m *MockBackend) UpdatesURL(gameID models.GameID) string {
	args := m.Called(gameID)
	return args.String(0)
}
