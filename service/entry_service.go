package service

import (
	"context"
	"fmt"
	"math/rand"

	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

// entryRequestLabel is the label attached to every entry debit request.
const entryRequestLabel = "Lucky Pot Entry"

type entryService struct {
	repo             PotRepository
	stackcoin        StackCoinClient
	entryCost        int64
	instantWinChance float64
}

// NewEntryService creates a new entry admission service
func NewEntryService(repo PotRepository, stackcoinClient StackCoinClient, entryCost int64, instantWinChance float64) EntryService {
	return &entryService{
		repo:             repo,
		stackcoin:        stackcoinClient,
		entryCost:        entryCost,
		instantWinChance: instantWinChance,
	}
}

// EnterPot validates and persists one user's attempt to join the guild's
// current pot. Rejections come back as outcomes with no state created;
// only store failures surface as errors.
func (s *entryService) EnterPot(ctx context.Context, discordID, guildID string) (*models.EntryResult, error) {
	// Resolve the ledger account first; nothing is created for
	// unregistered users.
	account, err := s.stackcoin.GetUserByDiscordID(ctx, discordID)
	if err != nil {
		log.WithError(err).WithField("discordID", discordID).Error("Failed to resolve StackCoin account")
		return &models.EntryResult{Outcome: models.EntryOutcomeRequestFailed}, nil
	}
	if account == nil {
		return &models.EntryResult{Outcome: models.EntryOutcomeNotRegistered}, nil
	}

	if err := s.repo.GetOrCreateUser(ctx, discordID, guildID); err != nil {
		return nil, fmt.Errorf("failed to ensure user row: %w", err)
	}

	pot, err := s.repo.GetOrCreateCurrentPot(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current pot: %w", err)
	}

	// Cooldown gate before any ledger call.
	canEnter, err := s.repo.CanUserEnterPot(ctx, discordID, guildID, pot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check entry cooldown: %w", err)
	}
	if !canEnter {
		return &models.EntryResult{Outcome: models.EntryOutcomeCooldownActive, PotID: pot.ID}, nil
	}

	// Create the debit request before persisting anything locally, so a
	// failed request never leaves an orphaned entry behind.
	requestID, err := s.stackcoin.CreateRequest(ctx, account.ID, s.entryCost, entryRequestLabel)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"discordID": discordID,
			"guildID":   guildID,
		}).Error("Failed to create payment request")
		return &models.EntryResult{Outcome: models.EntryOutcomeRequestFailed, PotID: pot.ID}, nil
	}

	isInstantWin := rand.Float64() < s.instantWinChance

	entryID, err := s.repo.CreatePotEntry(ctx, pot.ID, discordID, guildID, requestID, s.entryCost, isInstantWin)
	if err != nil {
		return nil, fmt.Errorf("failed to persist pot entry: %w", err)
	}

	// The quoted total includes this entry's cost even though the entry
	// itself is still unconfirmed.
	var potTotal int64
	if status, err := s.repo.GetPotStatus(ctx, guildID); err != nil {
		log.WithError(err).WithField("guildID", guildID).Warn("Failed to read pot status after entry")
	} else if status != nil {
		potTotal = status.TotalAmount
	}
	potTotal += s.entryCost

	result := &models.EntryResult{
		Outcome:   models.EntryOutcomeEntered,
		EntryID:   entryID,
		PotID:     pot.ID,
		EntryCost: s.entryCost,
		PotTotal:  potTotal,
		RequestID: requestID,
	}
	if isInstantWin {
		result.Outcome = models.EntryOutcomeInstantWin
	}

	log.WithFields(log.Fields{
		"discordID":  discordID,
		"guildID":    guildID,
		"entryID":    entryID,
		"requestID":  requestID,
		"instantWin": isInstantWin,
	}).Info("Pot entry created")

	return result, nil
}

// GetPotStatus returns the aggregated status of the guild's current pot.
func (s *entryService) GetPotStatus(ctx context.Context, guildID string) (*models.PotStatus, error) {
	return s.repo.GetPotStatus(ctx, guildID)
}
