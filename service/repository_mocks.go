package service

import (
	"context"

	"luckypot/events"
	"luckypot/models"
	"luckypot/stackcoin"

	"github.com/stretchr/testify/mock"
)

// MockPotRepository is a mock implementation of PotRepository
type MockPotRepository struct {
	mock.Mock
}

func (m *MockPotRepository) GetOrCreateUser(ctx context.Context, discordID, guildID string) error {
	args := m.Called(ctx, discordID, guildID)
	return args.Error(0)
}

func (m *MockPotRepository) GetUser(ctx context.Context, discordID, guildID string) (*models.User, error) {
	args := m.Called(ctx, discordID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockPotRepository) GetCurrentPot(ctx context.Context, guildID string) (*models.Pot, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pot), args.Error(1)
}

func (m *MockPotRepository) CreateNewPot(ctx context.Context, guildID string) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPotRepository) GetOrCreateCurrentPot(ctx context.Context, guildID string) (*models.Pot, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pot), args.Error(1)
}

func (m *MockPotRepository) CanUserEnterPot(ctx context.Context, discordID, guildID string, potID int64) (bool, error) {
	args := m.Called(ctx, discordID, guildID, potID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPotRepository) CreatePotEntry(ctx context.Context, potID int64, discordID, guildID, requestID string, amount int64, isInstantWin bool) (int64, error) {
	args := m.Called(ctx, potID, discordID, guildID, requestID, amount, isInstantWin)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPotRepository) GetPotStatus(ctx context.Context, guildID string) (*models.PotStatus, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PotStatus), args.Error(1)
}

func (m *MockPotRepository) ConfirmEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockPotRepository) DenyEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockPotRepository) GetUnconfirmedEntries(ctx context.Context) ([]*models.PotEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PotEntry), args.Error(1)
}

func (m *MockPotRepository) GetExpiredEntries(ctx context.Context) ([]*models.PotEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PotEntry), args.Error(1)
}

func (m *MockPotRepository) GetActivePotParticipants(ctx context.Context, guildID string) ([]*models.Participant, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockPotRepository) WinPot(ctx context.Context, guildID, winnerID string, amount int64) error {
	args := m.Called(ctx, guildID, winnerID, amount)
	return args.Error(0)
}

func (m *MockPotRepository) GetAllActiveGuilds(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockStackCoinClient is a mock implementation of StackCoinClient
type MockStackCoinClient struct {
	mock.Mock
}

func (m *MockStackCoinClient) GetUserByDiscordID(ctx context.Context, discordID string) (*stackcoin.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stackcoin.User), args.Error(1)
}

func (m *MockStackCoinClient) SelfBalance(ctx context.Context) (*stackcoin.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stackcoin.Balance), args.Error(1)
}

func (m *MockStackCoinClient) CreateRequest(ctx context.Context, userID int64, amount int64, label string) (string, error) {
	args := m.Called(ctx, userID, amount, label)
	return args.String(0), args.Error(1)
}

func (m *MockStackCoinClient) GetAcceptedRequests(ctx context.Context) ([]*stackcoin.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stackcoin.Request), args.Error(1)
}

func (m *MockStackCoinClient) DenyRequest(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockStackCoinClient) SendFunds(ctx context.Context, userID int64, amount int64, label string) error {
	args := m.Called(ctx, userID, amount, label)
	return args.Error(0)
}

func (m *MockStackCoinClient) GetGuildChannel(ctx context.Context, guildID string) (string, error) {
	args := m.Called(ctx, guildID)
	return args.String(0), args.Error(1)
}

// MockDrawService is a mock implementation of DrawService
type MockDrawService struct {
	mock.Mock
}

func (m *MockDrawService) SelectWeightedWinner(participants []*models.Participant) (string, error) {
	args := m.Called(participants)
	return args.String(0), args.Error(1)
}

func (m *MockDrawService) ProcessPotWin(ctx context.Context, guildID, winnerID string, amount int64, label string) error {
	args := m.Called(ctx, guildID, winnerID, amount, label)
	return args.Error(0)
}

func (m *MockDrawService) EndPotWithWinner(ctx context.Context, guildID, label string) (*models.WinnerInfo, error) {
	args := m.Called(ctx, guildID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WinnerInfo), args.Error(1)
}

func (m *MockDrawService) RunDailyDraw(ctx context.Context) {
	m.Called(ctx)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
