package service

import (
	"context"
	"fmt"

	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

type reconcileService struct {
	repo      PotRepository
	stackcoin StackCoinClient
	draw      DrawService
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(repo PotRepository, stackcoinClient StackCoinClient, draw DrawService) ReconcileService {
	return &reconcileService{
		repo:      repo,
		stackcoin: stackcoinClient,
		draw:      draw,
	}
}

// Reconcile runs one confirmation pass and one expiry pass. Failures on a
// single entry are logged and skipped so the rest of the batch still
// advances; the skipped entry is retried on the next tick.
func (s *reconcileService) Reconcile(ctx context.Context) error {
	if err := s.confirmEntries(ctx); err != nil {
		log.WithError(err).Error("Confirmation pass failed")
	}
	if err := s.expireEntries(ctx); err != nil {
		log.WithError(err).Error("Expiry pass failed")
	}
	return nil
}

// confirmEntries matches pending entries against the ledger's accepted
// requests and advances the matches. Confirming is idempotent: once the
// confirmation timestamp is set the entry leaves the pending set, so the
// same accepted request seen on a later tick is a no-op.
func (s *reconcileService) confirmEntries(ctx context.Context) error {
	entries, err := s.repo.GetUnconfirmedEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to get unconfirmed entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	accepted, err := s.stackcoin.GetAcceptedRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to get accepted requests: %w", err)
	}

	acceptedIDs := make(map[string]bool, len(accepted))
	for _, req := range accepted {
		acceptedIDs[req.RequestID()] = true
	}

	for _, entry := range entries {
		if !acceptedIDs[entry.RequestID] {
			continue
		}
		s.confirmEntry(ctx, entry)
	}

	return nil
}

func (s *reconcileService) confirmEntry(ctx context.Context, entry *models.PotEntry) {
	if err := s.repo.ConfirmEntry(ctx, entry.ID); err != nil {
		log.WithError(err).WithField("entryID", entry.ID).Error("Failed to confirm entry")
		return
	}

	log.WithFields(log.Fields{
		"entryID":   entry.ID,
		"guildID":   entry.GuildID,
		"discordID": entry.DiscordID,
		"requestID": entry.RequestID,
	}).Info("Entry confirmed")

	if !entry.IsInstantWin() {
		return
	}

	// The instant win was rolled at entry time but only pays out now that
	// the entrant has actually paid in. The payout is the pot's current
	// total, including this entry's just-confirmed contribution.
	status, err := s.repo.GetPotStatus(ctx, entry.GuildID)
	if err != nil {
		log.WithError(err).WithField("guildID", entry.GuildID).Error("Failed to get pot status for instant win")
		return
	}
	if status == nil {
		log.WithFields(log.Fields{
			"entryID": entry.ID,
			"guildID": entry.GuildID,
		}).Warn("Instant win entry confirmed but guild has no current pot")
		return
	}

	if err := s.draw.ProcessPotWin(ctx, entry.GuildID, entry.DiscordID, status.TotalAmount, LabelInstantWin); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"entryID":   entry.ID,
			"guildID":   entry.GuildID,
			"discordID": entry.DiscordID,
		}).Error("Instant win payout failed")
	}
}

// expireEntries denies the ledger request of every pending entry older
// than an hour and marks the entry denied. If the ledger denial fails the
// entry stays pending and is retried next tick (at-least-once).
func (s *reconcileService) expireEntries(ctx context.Context) error {
	entries, err := s.repo.GetExpiredEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to get expired entries: %w", err)
	}

	for _, entry := range entries {
		if err := s.stackcoin.DenyRequest(ctx, entry.RequestID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"entryID":   entry.ID,
				"requestID": entry.RequestID,
			}).Error("Failed to deny expired request, will retry")
			continue
		}

		if err := s.repo.DenyEntry(ctx, entry.ID); err != nil {
			log.WithError(err).WithField("entryID", entry.ID).Error("Failed to mark entry denied")
			continue
		}

		log.WithFields(log.Fields{
			"entryID":   entry.ID,
			"guildID":   entry.GuildID,
			"requestID": entry.RequestID,
		}).Info("Expired entry denied")
	}

	return nil
}
