package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"luckypot/events"
	"luckypot/models"

	log "github.com/sirupsen/logrus"
)

// Draw labels attached to payouts and announcements.
const (
	LabelDailyDraw  = "Lucky Pot Daily Draw"
	LabelInstantWin = "Lucky Pot Instant Win"
	LabelForcedDraw = "Lucky Pot Draw"
)

// ErrNoParticipants is returned when a weighted draw is attempted over an
// empty participant set. Callers are expected to check beforehand.
var ErrNoParticipants = errors.New("no participants to draw from")

type drawService struct {
	repo            PotRepository
	stackcoin       StackCoinClient
	eventPublisher  EventPublisher
	dailyDrawChance float64
}

// NewDrawService creates a new draw service
func NewDrawService(repo PotRepository, stackcoinClient StackCoinClient, eventPublisher EventPublisher, dailyDrawChance float64) DrawService {
	return &drawService{
		repo:            repo,
		stackcoin:       stackcoinClient,
		eventPublisher:  eventPublisher,
		dailyDrawChance: dailyDrawChance,
	}
}

// SelectWeightedWinner draws one participant with probability proportional
// to their entry count, using a cumulative-weight binary search instead of
// materializing the multiset of repeated ids.
func (s *drawService) SelectWeightedWinner(participants []*models.Participant) (string, error) {
	if len(participants) == 0 {
		return "", ErrNoParticipants
	}

	cumulative := make([]int64, len(participants))
	var total int64
	for i, p := range participants {
		total += int64(p.Entries)
		cumulative[i] = total
	}
	if total <= 0 {
		return "", ErrNoParticipants
	}

	roll := rand.Int63n(total)
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > roll
	})
	return participants[idx].DiscordID, nil
}

// ProcessPotWin sends the pot to the winner and, only once the send has
// succeeded, closes the pot and announces the result. A failed send leaves
// the pot open and unwon.
func (s *drawService) ProcessPotWin(ctx context.Context, guildID, winnerID string, amount int64, label string) error {
	account, err := s.stackcoin.GetUserByDiscordID(ctx, winnerID)
	if err != nil {
		return fmt.Errorf("failed to resolve winner %s: %w", winnerID, err)
	}
	if account == nil {
		return fmt.Errorf("winner %s has no StackCoin account", winnerID)
	}

	// The send is the irreversible step; the store is only touched after
	// it reports success.
	if err := s.stackcoin.SendFunds(ctx, account.ID, amount, label); err != nil {
		return fmt.Errorf("failed to send pot winnings: %w", err)
	}

	if err := s.repo.WinPot(ctx, guildID, winnerID, amount); err != nil {
		return fmt.Errorf("failed to record pot win: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":  guildID,
		"winnerID": winnerID,
		"amount":   amount,
		"label":    label,
	}).Info("Pot won")

	s.eventPublisher.Publish(ctx, events.PotWonEvent{
		GuildID:  guildID,
		WinnerID: winnerID,
		Amount:   amount,
		Label:    label,
	})

	return nil
}

// EndPotWithWinner runs a full draw for one guild: status fetch,
// participant fetch, weighted selection, payout. Returns nil without error
// when there is no current pot or no confirmed participants.
func (s *drawService) EndPotWithWinner(ctx context.Context, guildID, label string) (*models.WinnerInfo, error) {
	status, err := s.repo.GetPotStatus(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pot status: %w", err)
	}
	if status == nil {
		return nil, nil
	}

	participants, err := s.repo.GetActivePotParticipants(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, nil
	}

	winnerID, err := s.SelectWeightedWinner(participants)
	if err != nil {
		return nil, err
	}

	if err := s.ProcessPotWin(ctx, guildID, winnerID, status.TotalAmount, label); err != nil {
		return nil, err
	}

	return &models.WinnerInfo{
		GuildID:  guildID,
		WinnerID: winnerID,
		Amount:   status.TotalAmount,
		Label:    label,
	}, nil
}

// RunDailyDraw visits every guild with an active pot and flips the draw
// coin for each. Failures are isolated per guild; the pot simply survives
// to the next day.
func (s *drawService) RunDailyDraw(ctx context.Context) {
	guilds, err := s.repo.GetAllActiveGuilds(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list active guilds for daily draw")
		return
	}

	log.WithField("guilds", len(guilds)).Info("Running daily pot draw")

	for _, guildID := range guilds {
		s.runGuildDraw(ctx, guildID)
	}
}

func (s *drawService) runGuildDraw(ctx context.Context, guildID string) {
	participants, err := s.repo.GetActivePotParticipants(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Failed to get participants for daily draw")
		return
	}
	if len(participants) == 0 {
		return
	}

	if rand.Float64() >= s.dailyDrawChance {
		s.announceContinuation(ctx, guildID)
		return
	}

	info, err := s.EndPotWithWinner(ctx, guildID, LabelDailyDraw)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Daily draw failed")
		return
	}
	if info == nil {
		// Pot emptied between the participant check and the draw.
		s.announceContinuation(ctx, guildID)
	}
}

func (s *drawService) announceContinuation(ctx context.Context, guildID string) {
	status, err := s.repo.GetPotStatus(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Warn("Failed to get pot status for continuation announcement")
		return
	}
	if status == nil {
		return
	}

	s.eventPublisher.Publish(ctx, events.PotContinuesEvent{
		GuildID:          guildID,
		TotalAmount:      status.TotalAmount,
		ParticipantCount: status.ParticipantCount,
	})
}
