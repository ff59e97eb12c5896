package service

import (
	"context"
	"errors"
	"testing"

	"luckypot/models"
	"luckypot/stackcoin"

	"github.com/stretchr/testify/assert"
)

func TestEntryService_EnterPot_NotRegistered(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	service := NewEntryService(mockRepo, mockStk, 5, 0)

	// No StackCoin account for this Discord ID
	mockStk.On("GetUserByDiscordID", ctx, "111").Return(nil, nil)

	result, err := service.EnterPot(ctx, "111", "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeNotRegistered, result.Outcome)

	mockStk.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetOrCreateUser")
}

func TestEntryService_EnterPot_ResolutionFailure(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	service := NewEntryService(mockRepo, mockStk, 5, 0)

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(nil, errors.New("ledger unreachable"))

	result, err := service.EnterPot(ctx, "111", "guild-1")

	// A ledger outage is an outcome, not an error; nothing is persisted
	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeRequestFailed, result.Outcome)

	mockStk.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetOrCreateUser")
}

func TestEntryService_EnterPot_CooldownActive(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	service := NewEntryService(mockRepo, mockStk, 5, 0)

	account := &stackcoin.User{ID: 42, Username: "gambler"}
	pot := &models.Pot{ID: 7, GuildID: "guild-1", IsActive: true}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockRepo.On("GetOrCreateUser", ctx, "111", "guild-1").Return(nil)
	mockRepo.On("GetOrCreateCurrentPot", ctx, "guild-1").Return(pot, nil)
	mockRepo.On("CanUserEnterPot", ctx, "111", "guild-1", int64(7)).Return(false, nil)

	result, err := service.EnterPot(ctx, "111", "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeCooldownActive, result.Outcome)
	assert.Equal(t, int64(7), result.PotID)

	// No ledger request and no entry row for a cooldown rejection
	mockStk.AssertNotCalled(t, "CreateRequest")
	mockRepo.AssertNotCalled(t, "CreatePotEntry")
	mockRepo.AssertExpectations(t)
}

func TestEntryService_EnterPot_RequestCreationFails(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	service := NewEntryService(mockRepo, mockStk, 5, 0)

	account := &stackcoin.User{ID: 42, Username: "gambler"}
	pot := &models.Pot{ID: 7, GuildID: "guild-1", IsActive: true}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockRepo.On("GetOrCreateUser", ctx, "111", "guild-1").Return(nil)
	mockRepo.On("GetOrCreateCurrentPot", ctx, "guild-1").Return(pot, nil)
	mockRepo.On("CanUserEnterPot", ctx, "111", "guild-1", int64(7)).Return(true, nil)
	mockStk.On("CreateRequest", ctx, int64(42), int64(5), "Lucky Pot Entry").Return("", errors.New("boom"))

	result, err := service.EnterPot(ctx, "111", "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeRequestFailed, result.Outcome)

	// A failed request must never leave an entry row behind
	mockRepo.AssertNotCalled(t, "CreatePotEntry")
	mockStk.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestEntryService_EnterPot_Success(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	// Instant win chance zero makes the outcome deterministic
	service := NewEntryService(mockRepo, mockStk, 5, 0)

	account := &stackcoin.User{ID: 42, Username: "gambler"}
	pot := &models.Pot{ID: 7, GuildID: "guild-1", IsActive: true}
	status := &models.PotStatus{PotID: 7, TotalAmount: 20, ParticipantCount: 2}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockRepo.On("GetOrCreateUser", ctx, "111", "guild-1").Return(nil)
	mockRepo.On("GetOrCreateCurrentPot", ctx, "guild-1").Return(pot, nil)
	mockRepo.On("CanUserEnterPot", ctx, "111", "guild-1", int64(7)).Return(true, nil)
	mockStk.On("CreateRequest", ctx, int64(42), int64(5), "Lucky Pot Entry").Return("req-99", nil)
	mockRepo.On("CreatePotEntry", ctx, int64(7), "111", "guild-1", "req-99", int64(5), false).Return(int64(13), nil)
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)

	result, err := service.EnterPot(ctx, "111", "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeEntered, result.Outcome)
	assert.Equal(t, int64(13), result.EntryID)
	assert.Equal(t, "req-99", result.RequestID)
	// Quoted total includes the new entry's unconfirmed cost
	assert.Equal(t, int64(25), result.PotTotal)

	mockStk.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestEntryService_EnterPot_InstantWin(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	// Instant win chance of 1 forces the roll
	service := NewEntryService(mockRepo, mockStk, 5, 1.0)

	account := &stackcoin.User{ID: 42, Username: "gambler"}
	pot := &models.Pot{ID: 7, GuildID: "guild-1", IsActive: true}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockRepo.On("GetOrCreateUser", ctx, "111", "guild-1").Return(nil)
	mockRepo.On("GetOrCreateCurrentPot", ctx, "guild-1").Return(pot, nil)
	mockRepo.On("CanUserEnterPot", ctx, "111", "guild-1", int64(7)).Return(true, nil)
	mockStk.On("CreateRequest", ctx, int64(42), int64(5), "Lucky Pot Entry").Return("req-99", nil)
	mockRepo.On("CreatePotEntry", ctx, int64(7), "111", "guild-1", "req-99", int64(5), true).Return(int64(13), nil)
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(nil, nil)

	result, err := service.EnterPot(ctx, "111", "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, models.EntryOutcomeInstantWin, result.Outcome)
	assert.Equal(t, int64(5), result.PotTotal)

	mockStk.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestEntryService_GetPotStatus_NoPot(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)

	service := NewEntryService(mockRepo, mockStk, 5, 0)

	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(nil, nil)

	status, err := service.GetPotStatus(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Nil(t, status)
	mockRepo.AssertExpectations(t)
}
