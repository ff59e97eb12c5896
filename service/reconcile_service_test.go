package service

import (
	"context"
	"errors"
	"testing"

	"luckypot/models"
	"luckypot/stackcoin"

	"github.com/stretchr/testify/assert"
)

func TestReconcileService_ConfirmsAcceptedEntries(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	entries := []*models.PotEntry{
		{ID: 1, PotID: 7, DiscordID: "111", GuildID: "guild-1", RequestID: "req-1", Status: models.EntryStatusUnconfirmed},
		{ID: 2, PotID: 7, DiscordID: "222", GuildID: "guild-1", RequestID: "req-2", Status: models.EntryStatusUnconfirmed},
	}
	accepted := []*stackcoin.Request{
		{ID: "req-1", Status: "accepted"},
	}

	mockRepo.On("GetUnconfirmedEntries", ctx).Return(entries, nil)
	mockStk.On("GetAcceptedRequests", ctx).Return(accepted, nil)
	// Only the matched entry gets confirmed
	mockRepo.On("ConfirmEntry", ctx, int64(1)).Return(nil)
	mockRepo.On("GetExpiredEntries", ctx).Return([]*models.PotEntry{}, nil)

	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "ConfirmEntry", ctx, int64(2))
	mockDraw.AssertNotCalled(t, "ProcessPotWin")
}

func TestReconcileService_InstantWinPaysOutOnConfirmation(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	entries := []*models.PotEntry{
		{ID: 1, PotID: 7, DiscordID: "111", GuildID: "guild-1", RequestID: "req-1", Status: models.EntryStatusInstantWin},
	}
	accepted := []*stackcoin.Request{
		{ID: "req-1", Status: "accepted"},
	}
	// Payout includes the just-confirmed entry's contribution
	status := &models.PotStatus{PotID: 7, TotalAmount: 25, ParticipantCount: 3}

	mockRepo.On("GetUnconfirmedEntries", ctx).Return(entries, nil)
	mockStk.On("GetAcceptedRequests", ctx).Return(accepted, nil)
	mockRepo.On("ConfirmEntry", ctx, int64(1)).Return(nil)
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)
	mockDraw.On("ProcessPotWin", ctx, "guild-1", "111", int64(25), LabelInstantWin).Return(nil)
	mockRepo.On("GetExpiredEntries", ctx).Return([]*models.PotEntry{}, nil)

	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockDraw.AssertExpectations(t)
}

func TestReconcileService_InstantWinPayoutFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	entries := []*models.PotEntry{
		{ID: 1, PotID: 7, DiscordID: "111", GuildID: "guild-1", RequestID: "req-1", Status: models.EntryStatusInstantWin},
	}
	accepted := []*stackcoin.Request{
		{ID: "req-1", Status: "accepted"},
	}
	status := &models.PotStatus{PotID: 7, TotalAmount: 25, ParticipantCount: 3}

	mockRepo.On("GetUnconfirmedEntries", ctx).Return(entries, nil)
	mockStk.On("GetAcceptedRequests", ctx).Return(accepted, nil)
	mockRepo.On("ConfirmEntry", ctx, int64(1)).Return(nil)
	mockRepo.On("GetPotStatus", ctx, "guild-1").Return(status, nil)
	mockDraw.On("ProcessPotWin", ctx, "guild-1", "111", int64(25), LabelInstantWin).Return(errors.New("send failed"))
	mockRepo.On("GetExpiredEntries", ctx).Return([]*models.PotEntry{}, nil)

	// The pass still completes. The entry is already confirmed, so the
	// payout is not retried by reconciliation; the open pot is resolved
	// by a later draw.
	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockDraw.AssertExpectations(t)
}

func TestReconcileService_NoPendingEntriesSkipsLedgerCall(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	mockRepo.On("GetUnconfirmedEntries", ctx).Return([]*models.PotEntry{}, nil)
	mockRepo.On("GetExpiredEntries", ctx).Return([]*models.PotEntry{}, nil)

	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockStk.AssertNotCalled(t, "GetAcceptedRequests")
}

func TestReconcileService_ExpiresStaleEntries(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	expired := []*models.PotEntry{
		{ID: 3, PotID: 7, DiscordID: "333", GuildID: "guild-1", RequestID: "req-3", Status: models.EntryStatusUnconfirmed},
	}

	mockRepo.On("GetUnconfirmedEntries", ctx).Return([]*models.PotEntry{}, nil)
	mockRepo.On("GetExpiredEntries", ctx).Return(expired, nil)
	mockStk.On("DenyRequest", ctx, "req-3").Return(nil)
	mockRepo.On("DenyEntry", ctx, int64(3)).Return(nil)

	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockStk.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestReconcileService_DenyFailureLeavesEntryPending(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockPotRepository)
	mockStk := new(MockStackCoinClient)
	mockDraw := new(MockDrawService)

	service := NewReconcileService(mockRepo, mockStk, mockDraw)

	expired := []*models.PotEntry{
		{ID: 3, PotID: 7, DiscordID: "333", GuildID: "guild-1", RequestID: "req-3", Status: models.EntryStatusUnconfirmed},
	}

	mockRepo.On("GetUnconfirmedEntries", ctx).Return([]*models.PotEntry{}, nil)
	mockRepo.On("GetExpiredEntries", ctx).Return(expired, nil)
	// Ledger denial fails: the local entry must stay pending for retry
	mockStk.On("DenyRequest", ctx, "req-3").Return(errors.New("timeout"))

	err := service.Reconcile(ctx)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "DenyEntry")
}
