package services

import (
	"github.com/stretchr/testify/mock"

	"codenames-sync/models"
)

// make sure MockGameService satisfies GameServiceInterface
var _ GameServiceInterface = (*MockGameService)(nil)

// MockGameService is a testify mock for controller tests.
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) CreateGame(name string, creator models.SessionID) (models.GameID, error) {
	args := m.Called(name, creator)
	return args.Get(0).(models.GameID), args.Error(1)
}

func (m *MockGameService) Words(gameID models.GameID) ([]models.Word, error) {
	args := m.Called(gameID)
	words, _ := args.Get(0).([]models.Word)
	return words, args.Error(1)
}

func (m *MockGameService) Join(gameID models.GameID, sessionID models.SessionID, name string, color models.ColorID, role models.RoleID) (models.GameState, error) {
	args := m.Called(gameID, sessionID, name, color, role)
	return args.Get(0).(models.GameState), args.Error(1)
}

func (m *MockGameService) Start(gameID models.GameID, sessionID models.SessionID) (models.GameState, error) {
	args := m.Called(gameID, sessionID)
	return args.Get(0).(models.GameState), args.Error(1)
}

func (m *MockGameService) State(gameID models.GameID) (models.GameState, error) {
	args := m.Called(gameID)
	return args.Get(0).(models.GameState), args.Error(1)
}
