package service

import (
	"context"

	"luckypot/events"
	"luckypot/models"
	"luckypot/stackcoin"
)

// PotRepository defines the interface for pot data access
type PotRepository interface {
	// GetOrCreateUser inserts a user row if absent; no-op otherwise
	GetOrCreateUser(ctx context.Context, discordID, guildID string) error

	// GetUser retrieves a user row, or nil if absent
	GetUser(ctx context.Context, discordID, guildID string) (*models.User, error)

	// GetCurrentPot returns the guild's active, unwon pot, or nil
	GetCurrentPot(ctx context.Context, guildID string) (*models.Pot, error)

	// CreateNewPot inserts a new active pot and returns its id
	CreateNewPot(ctx context.Context, guildID string) (int64, error)

	// GetOrCreateCurrentPot returns the current pot, creating one if needed
	GetOrCreateCurrentPot(ctx context.Context, guildID string) (*models.Pot, error)

	// CanUserEnterPot checks the 6-hour pot-scoped cooldown gate
	CanUserEnterPot(ctx context.Context, discordID, guildID string, potID int64) (bool, error)

	// CreatePotEntry persists a new entry correlated to a payment request
	CreatePotEntry(ctx context.Context, potID int64, discordID, guildID, requestID string, amount int64, isInstantWin bool) (int64, error)

	// GetPotStatus aggregates the current pot's confirmed entries by user
	GetPotStatus(ctx context.Context, guildID string) (*models.PotStatus, error)

	// ConfirmEntry stamps an entry as confirmed
	ConfirmEntry(ctx context.Context, entryID int64) error

	// DenyEntry marks an entry as denied
	DenyEntry(ctx context.Context, entryID int64) error

	// GetUnconfirmedEntries returns pending entries at most an hour old
	GetUnconfirmedEntries(ctx context.Context) ([]*models.PotEntry, error)

	// GetExpiredEntries returns pending entries older than an hour
	GetExpiredEntries(ctx context.Context) ([]*models.PotEntry, error)

	// GetActivePotParticipants returns confirmed entries grouped by user
	GetActivePotParticipants(ctx context.Context, guildID string) ([]*models.Participant, error)

	// WinPot closes the current pot and credits the winner atomically
	WinPot(ctx context.Context, guildID, winnerID string, amount int64) error

	// GetAllActiveGuilds returns distinct guilds with an active pot
	GetAllActiveGuilds(ctx context.Context) ([]string, error)
}

// StackCoinClient defines the consumed surface of the StackCoin ledger API
type StackCoinClient interface {
	// GetUserByDiscordID resolves a StackCoin account, nil if unregistered
	GetUserByDiscordID(ctx context.Context, discordID string) (*stackcoin.User, error)

	// SelfBalance returns the bot account's own identity and balance
	SelfBalance(ctx context.Context) (*stackcoin.Balance, error)

	// CreateRequest creates a payment request and returns its id
	CreateRequest(ctx context.Context, userID int64, amount int64, label string) (string, error)

	// GetAcceptedRequests lists requests accepted within the trailing window
	GetAcceptedRequests(ctx context.Context) ([]*stackcoin.Request, error)

	// DenyRequest denies a pending payment request
	DenyRequest(ctx context.Context, requestID string) error

	// SendFunds transfers amount to the given StackCoin user
	SendFunds(ctx context.Context, userID int64, amount int64, label string) error

	// GetGuildChannel returns a guild's announcement channel, "" if none
	GetGuildChannel(ctx context.Context, guildID string) (string, error)
}

// EntryService defines the interface for entry admission
type EntryService interface {
	// EnterPot runs the synchronous admission path for one user
	EnterPot(ctx context.Context, discordID, guildID string) (*models.EntryResult, error)

	// GetPotStatus returns the current pot's aggregated status, nil if none
	GetPotStatus(ctx context.Context, guildID string) (*models.PotStatus, error)
}

// DrawService defines the interface for winner selection and payout
type DrawService interface {
	// SelectWeightedWinner draws a participant with probability
	// proportional to entry count; participants must be non-empty
	SelectWeightedWinner(participants []*models.Participant) (string, error)

	// ProcessPotWin pays the winner and, only if the send succeeds,
	// closes the pot and announces the win
	ProcessPotWin(ctx context.Context, guildID, winnerID string, amount int64, label string) error

	// EndPotWithWinner orchestrates a full draw for one guild; nil result
	// when there is no pot or no participants
	EndPotWithWinner(ctx context.Context, guildID, label string) (*models.WinnerInfo, error)

	// RunDailyDraw runs the scheduled draw over every active guild
	RunDailyDraw(ctx context.Context)
}

// ReconcileService defines the interface for the reconciliation passes
type ReconcileService interface {
	// Reconcile runs one confirmation pass and one expiry pass
	Reconcile(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}
