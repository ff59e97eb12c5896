package service

import (
	"context"
	"errors"
	"testing"

	"luckypot/events"
	"luckypot/models"
	"luckypot/stackcoin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDrawService_SelectWeightedWinner_Empty(t *testing.T) {
	service := NewDrawService(new(MockPotRepository), new(MockStackCoinClient), new(MockEventPublisher), 0.4)

	_, err := service.SelectWeightedWinner(nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestDrawService_SelectWeightedWinner_SingleParticipant(t *testing.T) {
	service := NewDrawService(new(MockPotRepository), new(MockStackCoinClient), new(MockEventPublisher), 0.4)

	winner, err := service.SelectWeightedWinner([]*models.Participant{
		{DiscordID: "111", Entries: 1},
	})

	assert.NoError(t, err)
	assert.Equal(t, "111", winner)
}

func TestDrawService_SelectWeightedWinner_Distribution(t *testing.T) {
	service := NewDrawService(new(MockPotRepository), new(MockStackCoinClient), new(MockEventPublisher), 0.4)

	participants := []*models.Participant{
		{DiscordID: "heavy", Entries: 3},
		{DiscordID: "light", Entries: 1},
	}

	const trials = 10000
	wins := make(map[string]int)
	for i := 0; i < trials; i++ {
		winner, err := service.SelectWeightedWinner(participants)
		assert.NoError(t, err)
		wins[winner]++
	}

	// Expected 75% for the 3-entry participant; allow generous slack
	heavyRate := float64(wins["heavy"]) / trials
	assert.InDelta(t, 0.75, heavyRate, 0.03,
		"3-of-4 entries should win about 75%% of draws, got %.3f", heavyRate)
	assert.Equal(t, trials, wins["heavy"]+wins["light"])
}

func TestDrawService_ProcessPotWin_Success(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	service := NewDrawService(mockRepo, mockStk, mockPublisher, 0.4)

	account := &stackcoin.User{ID: 42, Username: "winner"}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockStk.On("SendFunds", ctx, int64(42), int64(50), LabelDailyDraw).Return(nil)
	mockRepo.On("WinPot", ctx, "guild-1", "111", int64(50)).Return(nil)
	mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		won, ok := e.(events.PotWonEvent)
		return ok && won.GuildID == "guild-1" && won.WinnerID == "111" && won.Amount == 50
	})).Return()

	err := service.ProcessPotWin(ctx, "guild-1", "111", 50, LabelDailyDraw)

	assert.NoError(t, err)
	mockStk.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestDrawService_ProcessPotWin_SendFailureLeavesPotOpen(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	service := NewDrawService(mockRepo, mockStk, mockPublisher, 0.4)

	account := &stackcoin.User{ID: 42, Username: "winner"}

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockStk.On("SendFunds", ctx, int64(42), int64(50), LabelDailyDraw).Return(errors.New("insufficient funds"))

	err := service.ProcessPotWin(ctx, "guild-1", "111", 50, LabelDailyDraw)

	assert.Error(t, err)
	// A failed send must never close the pot or announce a win
	mockRepo.AssertNotCalled(t, "WinPot")
	mockPublisher.AssertNotCalled(t, "Publish")
}

func TestDrawService_ProcessPotWin_WinnerUnregistered(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	service := NewDrawService(mockRepo, mockStk, mockPublisher, 0.4)

	mockStk.On("GetUserByDiscordID", ctx, "111").Return(nil, nil)

	err := service.ProcessPotWin(ctx, "guild-1", "111", 50, LabelDailyDraw)

	assert.Error(t, err)
	mockStk.AssertNotCalled(t, "SendFunds")
	mockRepo.AssertNotCalled(t, "WinPot")
}

func TestDrawService_EndPotWithWinner_NoPot(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)

	service := NewDrawService(mockRepo, new(MockStackCoinClient), new(MockEventPublisher), 0.4)

	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(nil, nil)

	info, err := service.EndPotWithWinner(ctx, "guild-1", LabelForcedDraw)

	assert.NoError(t, err)
	assert.Nil(t, info)
	mockRepo.AssertExpectations(t)
}

func TestDrawService_EndPotWithWinner_NoParticipants(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)

	service := NewDrawService(mockRepo, new(MockStackCoinClient), new(MockEventPublisher), 0.4)

	status := &models.PotStatus{PotID: 7, TotalAmount: 0}
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)
	mockRepo.On("GetActivePotParticipants", ctx, "guild-1").Return([]*models.Participant{}, nil)

	info, err := service.EndPotWithWinner(ctx, "guild-1", LabelForcedDraw)

	assert.NoError(t, err)
	assert.Nil(t, info)
	mockRepo.AssertExpectations(t)
}

func TestDrawService_EndPotWithWinner_Success(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	service := NewDrawService(mockRepo, mockStk, mockPublisher, 0.4)

	status := &models.PotStatus{PotID: 7, TotalAmount: 50, ParticipantCount: 1}
	participants := []*models.Participant{{DiscordID: "111", Entries: 2}}
	account := &stackcoin.User{ID: 42, Username: "winner"}

	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)
	mockRepo.On("GetActivePotParticipants", ctx, "guild-1").Return(participants, nil)
	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockStk.On("SendFunds", ctx, int64(42), int64(50), LabelForcedDraw).Return(nil)
	mockRepo.On("WinPot", ctx, "guild-1", "111", int64(50)).Return(nil)
	mockPublisher.On("Publish", ctx, mock.AnythingOfType("events.PotWonEvent")).Return()

	info, err := service.EndPotWithWinner(ctx, "guild-1", LabelForcedDraw)

	assert.NoError(t, err)
	assert.NotNil(t, info)
	assert.Equal(t, "111", info.WinnerID)
	assert.Equal(t, int64(50), info.Amount)
	assert.Equal(t, LabelForcedDraw, info.Label)

	mockRepo.AssertExpectations(t)
	mockStk.AssertExpectations(t)
}

func TestDrawService_RunDailyDraw_SkipsEmptyGuilds(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	// Chance of 1 means any guild with participants must be drawn
	service := NewDrawService(mockRepo, mockStk, mockPublisher, 1.0)

	mockRepo.On("GetAllActiveGuilds", ctx).Return([]string{"empty-guild"}, nil)
	mockRepo.On("GetActivePotParticipants", ctx, "empty-guild").Return([]*models.Participant{}, nil)

	service.RunDailyDraw(ctx)

	// Empty pots are skipped silently, no payout and no announcement
	mockStk.AssertNotCalled(t, "SendFunds")
	mockPublisher.AssertNotCalled(t, "Publish")
	mockRepo.AssertExpectations(t)
}

func TestDrawService_RunDailyDraw_ContinuationAnnounced(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	// Chance of 0 means the coin flip always keeps the pot open
	service := NewDrawService(mockRepo, mockStk, mockPublisher, 0)

	participants := []*models.Participant{{DiscordID: "111", Entries: 1}}
	status := &models.PotStatus{PotID: 7, TotalAmount: 5, ParticipantCount: 1}

	mockRepo.On("GetAllActiveGuilds", ctx).Return([]string{"guild-1"}, nil)
	mockRepo.On("GetActivePotParticipants", ctx, "guild-1").Return(participants, nil)
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)
	mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		cont, ok := e.(events.PotContinuesEvent)
		return ok && cont.GuildID == "guild-1" && cont.TotalAmount == 5 && cont.ParticipantCount == 1
	})).Return()

	service.RunDailyDraw(ctx)

	mockStk.AssertNotCalled(t, "SendFunds")
	mockPublisher.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestDrawService_RunDailyDraw_GuildFailureIsolated(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockPublisher := new(MockEventPublisher)

	service := NewDrawService(mockRepo, mockStk, mockPublisher, 1.0)

	participants := []*models.Participant{{DiscordID: "111", Entries: 1}}
	status := &models.PotStatus{PotID: 8, TotalAmount: 10, ParticipantCount: 1}
	account := &stackcoin.User{ID: 42, Username: "winner"}

	mockRepo.On("GetAllActiveGuilds", ctx).Return([]string{"bad-guild", "good-guild"}, nil)

	// First guild fails at the participant fetch
	mockRepo.On("GetActivePotParticipants", ctx, "bad-guild").Return(nil, errors.New("db down"))

	// Second guild pays out normally
	mockRepo.On("GetActivePotParticipants", ctx, "good-guild").Return(participants, nil)
	mockRepo.On("GetPotStatus", ctx, "good-guild").Return(status, nil)
	mockStk.On("GetUserByDiscordID", ctx, "111").Return(account, nil)
	mockStk.On("SendFunds", ctx, int64(42), int64(10), LabelDailyDraw).Return(nil)
	mockRepo.On("WinPot", ctx, "good-guild", "111", int64(10)).Return(nil)
	mockPublisher.On("Publish", ctx, mock.AnythingOfType("events.PotWonEvent")).Return()

	service.RunDailyDraw(ctx)

	mockRepo.AssertExpectations(t)
	mockStk.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
