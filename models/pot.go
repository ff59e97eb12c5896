package models

import (
	"time"
)

// Pot represents one guild's lottery round. At most one row per guild may
// be active and unwon at a time; a closed pot is never reopened.
type Pot struct {
	ID            int64      `db:"pot_id"`
	GuildID       string     `db:"guild_id"`
	WinnerID      *string    `db:"winner_id"`
	WinningAmount int64      `db:"winning_amount"`
	CreatedAt     time.Time  `db:"created_at"`
	WonAt         *time.Time `db:"won_at"`
	IsActive      bool       `db:"is_active"`
}

// Participant is one user's entry count in the current pot, the raw
// material for the weighted draw.
type Participant struct {
	DiscordID string `db:"discord_id"`
	Entries   int    `db:"entries"`
}

// PotParticipant is one user's aggregated stake in a pot.
type PotParticipant struct {
	DiscordID   string `db:"discord_id"`
	EntryCount  int    `db:"entry_count"`
	TotalAmount int64  `db:"total_amount"`
}

// PotStatus is the derived view of the current pot: confirmed entries
// grouped by user, ordered by entry count then amount.
type PotStatus struct {
	PotID            int64
	TotalAmount      int64
	ParticipantCount int
	Participants     []*PotParticipant
	CreatedAt        time.Time
}
