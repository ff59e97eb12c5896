package models

import (
	"time"
)

// User represents a Discord user's pot record within a single guild.
// Rows are created lazily on first interaction and never deleted; the
// win counters are only ever touched by the pot-win transaction.
type User struct {
	DiscordID     string     `db:"discord_id"`
	GuildID       string     `db:"guild_id"`
	TotalWins     int        `db:"total_wins"`
	TotalWinnings int64      `db:"total_winnings"`
	LastEntryTime *time.Time `db:"last_entry_time"`
	CreatedAt     time.Time  `db:"created_at"`
}
