package models

import (
	"time"
)

// EntryStatus is the lifecycle state of a pot entry. Transitions only ever
// move forward: unconfirmed -> confirmed, instant_win or denied. An
// instant_win entry is a confirmed entry carrying a payout obligation; it
// is still pending until its debit request is observed as accepted.
type EntryStatus string

const (
	EntryStatusUnconfirmed EntryStatus = "unconfirmed"
	EntryStatusConfirmed   EntryStatus = "confirmed"
	EntryStatusInstantWin  EntryStatus = "instant_win"
	EntryStatusDenied      EntryStatus = "denied"
)

// PotEntry is one user's attempt to join a pot, correlated to a single
// StackCoin payment request.
type PotEntry struct {
	ID          int64       `db:"entry_id"`
	PotID       int64       `db:"pot_id"`
	DiscordID   string      `db:"discord_id"`
	GuildID     string      `db:"guild_id"`
	Amount      int64       `db:"amount"`
	Status      EntryStatus `db:"status"`
	RequestID   string      `db:"stackcoin_request_id"`
	CreatedAt   time.Time   `db:"created_at"`
	ConfirmedAt *time.Time  `db:"confirmed_at"`
}

// IsInstantWin reports whether this entry was rolled as an instant win at
// creation time.
func (e *PotEntry) IsInstantWin() bool {
	return e.Status == EntryStatusInstantWin
}
