package repository

import (
	"context"
	"errors"
	"fmt"

	"luckypot/database"
	"luckypot/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code raised when two admissions
// race to create the current pot for the same guild.
const uniqueViolation = "23505"

// pendingEntry matches entries still awaiting a reconciliation verdict:
// plain unconfirmed entries plus instant-win entries whose debit has not
// been observed as accepted yet.
const pendingEntry = `(pe.status = 'unconfirmed' OR (pe.status = 'instant_win' AND pe.confirmed_at IS NULL))`

// PotRepository is the persistence layer for users, pots and entries.
type PotRepository struct {
	db *database.DB
	q  queryable
}

// NewPotRepository creates a new pot repository backed by the pool.
func NewPotRepository(db *database.DB) *PotRepository {
	return &PotRepository{db: db, q: db.Pool}
}

// GetOrCreateUser inserts a user row if absent. Idempotent; existing rows
// are left untouched.
func (r *PotRepository) GetOrCreateUser(ctx context.Context, discordID, guildID string) error {
	query := `
		INSERT INTO users (discord_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (discord_id, guild_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, discordID, guildID); err != nil {
		return fmt.Errorf("failed to get or create user %s in guild %s: %w", discordID, guildID, err)
	}
	return nil
}

// GetUser retrieves a user row, or nil if it does not exist.
func (r *PotRepository) GetUser(ctx context.Context, discordID, guildID string) (*models.User, error) {
	query := `
		SELECT discord_id, guild_id, total_wins, total_winnings, last_entry_time, created_at
		FROM users
		WHERE discord_id = $1 AND guild_id = $2
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, discordID, guildID).Scan(
		&user.DiscordID,
		&user.GuildID,
		&user.TotalWins,
		&user.TotalWinnings,
		&user.LastEntryTime,
		&user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s in guild %s: %w", discordID, guildID, err)
	}

	return &user, nil
}

// GetCurrentPot returns the guild's single active, unwon pot, or nil if
// there is none. Most recent first as a defensive tie-break; the partial
// unique index should prevent more than one.
func (r *PotRepository) GetCurrentPot(ctx context.Context, guildID string) (*models.Pot, error) {
	query := `
		SELECT pot_id, guild_id, winner_id, winning_amount, created_at, won_at, is_active
		FROM pots
		WHERE guild_id = $1 AND is_active = TRUE AND winner_id IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var pot models.Pot
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&pot.ID,
		&pot.GuildID,
		&pot.WinnerID,
		&pot.WinningAmount,
		&pot.CreatedAt,
		&pot.WonAt,
		&pot.IsActive,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current pot for guild %s: %w", guildID, err)
	}

	return &pot, nil
}

// CreateNewPot inserts a new active pot for the guild and returns its id.
func (r *PotRepository) CreateNewPot(ctx context.Context, guildID string) (int64, error) {
	query := `
		INSERT INTO pots (guild_id)
		VALUES ($1)
		RETURNING pot_id
	`

	var potID int64
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&potID); err != nil {
		return 0, fmt.Errorf("failed to create new pot for guild %s: %w", guildID, err)
	}
	return potID, nil
}

// GetOrCreateCurrentPot returns the guild's current pot, creating one if
// needed. Two admissions racing to create the first pot both reach the
// insert; the loser hits the partial unique index and re-fetches.
func (r *PotRepository) GetOrCreateCurrentPot(ctx context.Context, guildID string) (*models.Pot, error) {
	pot, err := r.GetCurrentPot(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if pot != nil {
		return pot, nil
	}

	if _, err := r.CreateNewPot(ctx, guildID); err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return nil, err
		}
	}

	pot, err = r.GetCurrentPot(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if pot == nil {
		return nil, fmt.Errorf("pot for guild %s missing after create", guildID)
	}
	return pot, nil
}

// CanUserEnterPot reports whether the user may enter the given pot: no
// confirmed or unconfirmed entry for that user, guild and pot within the
// trailing 6-hour window. Denied entries never block re-entry.
func (r *PotRepository) CanUserEnterPot(ctx context.Context, discordID, guildID string, potID int64) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM pot_entries
		WHERE discord_id = $1 AND guild_id = $2 AND pot_id = $3
		  AND created_at > NOW() - INTERVAL '6 hours'
		  AND status IN ('confirmed', 'unconfirmed')
	`

	var count int
	if err := r.q.QueryRow(ctx, query, discordID, guildID, potID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check pot entry cooldown for user %s: %w", discordID, err)
	}
	return count == 0, nil
}

// CreatePotEntry inserts an entry in unconfirmed state, flips it to
// instant_win when rolled, and records the request correlation row. The
// two-step status write is safe because no other component can see the
// entry between the statements.
func (r *PotRepository) CreatePotEntry(ctx context.Context, potID int64, discordID, guildID, requestID string, amount int64, isInstantWin bool) (int64, error) {
	query := `
		INSERT INTO pot_entries (pot_id, discord_id, guild_id, amount, stackcoin_request_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING entry_id
	`

	var entryID int64
	if err := r.q.QueryRow(ctx, query, potID, discordID, guildID, amount, requestID).Scan(&entryID); err != nil {
		return 0, fmt.Errorf("failed to create pot entry for user %s: %w", discordID, err)
	}

	if isInstantWin {
		update := `UPDATE pot_entries SET status = 'instant_win' WHERE entry_id = $1`
		if _, err := r.q.Exec(ctx, update, entryID); err != nil {
			return 0, fmt.Errorf("failed to mark entry %d as instant win: %w", entryID, err)
		}
	}

	correlate := `
		INSERT INTO stackcoin_requests (request_id, entry_id)
		VALUES ($1, $2)
		ON CONFLICT (request_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, correlate, requestID, entryID); err != nil {
		return 0, fmt.Errorf("failed to record request correlation for entry %d: %w", entryID, err)
	}

	return entryID, nil
}

// GetPotStatus aggregates the current pot's confirmed and instant-win
// entries by user. Returns nil if the guild has no current pot.
func (r *PotRepository) GetPotStatus(ctx context.Context, guildID string) (*models.PotStatus, error) {
	pot, err := r.GetCurrentPot(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if pot == nil {
		return nil, nil
	}

	query := `
		SELECT discord_id, COUNT(*) AS entry_count, SUM(amount) AS total_amount
		FROM pot_entries
		WHERE pot_id = $1 AND status IN ('confirmed', 'instant_win')
		GROUP BY discord_id
		ORDER BY entry_count DESC, total_amount DESC
	`

	rows, err := r.q.Query(ctx, query, pot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pot status for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	status := &models.PotStatus{
		PotID:     pot.ID,
		CreatedAt: pot.CreatedAt,
	}

	for rows.Next() {
		var p models.PotParticipant
		if err := rows.Scan(&p.DiscordID, &p.EntryCount, &p.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan pot participant: %w", err)
		}
		status.Participants = append(status.Participants, &p)
		status.TotalAmount += p.TotalAmount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pot participants: %w", err)
	}

	status.ParticipantCount = len(status.Participants)
	return status, nil
}

// ConfirmEntry stamps an entry as confirmed. An instant-win entry keeps
// its status and only gains the confirmation timestamp, which is what
// removes it from the pending set.
func (r *PotRepository) ConfirmEntry(ctx context.Context, entryID int64) error {
	query := `
		UPDATE pot_entries
		SET status = CASE WHEN status = 'instant_win' THEN status ELSE 'confirmed' END,
		    confirmed_at = NOW()
		WHERE entry_id = $1
	`

	if _, err := r.q.Exec(ctx, query, entryID); err != nil {
		return fmt.Errorf("failed to confirm entry %d: %w", entryID, err)
	}
	return nil
}

// DenyEntry marks an entry as denied.
func (r *PotRepository) DenyEntry(ctx context.Context, entryID int64) error {
	query := `UPDATE pot_entries SET status = 'denied' WHERE entry_id = $1`

	if _, err := r.q.Exec(ctx, query, entryID); err != nil {
		return fmt.Errorf("failed to deny entry %d: %w", entryID, err)
	}
	return nil
}

// GetUnconfirmedEntries returns pending entries created within the last
// hour, oldest first.
func (r *PotRepository) GetUnconfirmedEntries(ctx context.Context) ([]*models.PotEntry, error) {
	query := `
		SELECT pe.entry_id, pe.pot_id, pe.discord_id, p.guild_id, pe.amount,
		       pe.status, pe.stackcoin_request_id, pe.created_at, pe.confirmed_at
		FROM pot_entries pe
		JOIN pots p ON pe.pot_id = p.pot_id
		WHERE ` + pendingEntry + `
		  AND pe.created_at > NOW() - INTERVAL '1 hour'
		ORDER BY pe.created_at ASC
	`

	return r.queryEntries(ctx, query)
}

// GetExpiredEntries returns pending entries older than one hour, oldest
// first. Together with GetUnconfirmedEntries this partitions the pending
// set purely by age.
func (r *PotRepository) GetExpiredEntries(ctx context.Context) ([]*models.PotEntry, error) {
	query := `
		SELECT pe.entry_id, pe.pot_id, pe.discord_id, p.guild_id, pe.amount,
		       pe.status, pe.stackcoin_request_id, pe.created_at, pe.confirmed_at
		FROM pot_entries pe
		JOIN pots p ON pe.pot_id = p.pot_id
		WHERE ` + pendingEntry + `
		  AND pe.created_at <= NOW() - INTERVAL '1 hour'
		ORDER BY pe.created_at ASC
	`

	return r.queryEntries(ctx, query)
}

func (r *PotRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.PotEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pot entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.PotEntry
	for rows.Next() {
		var e models.PotEntry
		err := rows.Scan(
			&e.ID,
			&e.PotID,
			&e.DiscordID,
			&e.GuildID,
			&e.Amount,
			&e.Status,
			&e.RequestID,
			&e.CreatedAt,
			&e.ConfirmedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pot entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pot entries: %w", err)
	}

	return entries, nil
}

// GetActivePotParticipants returns the current pot's confirmed and
// instant-win entries grouped by user.
func (r *PotRepository) GetActivePotParticipants(ctx context.Context, guildID string) ([]*models.Participant, error) {
	pot, err := r.GetCurrentPot(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if pot == nil {
		return nil, nil
	}

	query := `
		SELECT discord_id, COUNT(*) AS entries
		FROM pot_entries
		WHERE pot_id = $1 AND status IN ('confirmed', 'instant_win')
		GROUP BY discord_id
	`

	rows, err := r.q.Query(ctx, query, pot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.DiscordID, &p.Entries); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// WinPot closes the guild's active, unwon pot with the winner and amount,
// and increments the winner's totals, in a single transaction. A silent
// no-op if the guild has no current pot; callers verify beforehand.
func (r *PotRepository) WinPot(ctx context.Context, guildID, winnerID string, amount int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return winPot(ctx, tx, guildID, winnerID, amount)
	})
}

func winPot(ctx context.Context, q queryable, guildID, winnerID string, amount int64) error {
	closePot := `
		UPDATE pots
		SET winner_id = $1, winning_amount = $2, won_at = NOW(), is_active = FALSE
		WHERE guild_id = $3 AND is_active = TRUE AND winner_id IS NULL
	`
	if _, err := q.Exec(ctx, closePot, winnerID, amount, guildID); err != nil {
		return fmt.Errorf("failed to close pot for guild %s: %w", guildID, err)
	}

	creditWinner := `
		UPDATE users
		SET total_wins = total_wins + 1, total_winnings = total_winnings + $1
		WHERE discord_id = $2 AND guild_id = $3
	`
	if _, err := q.Exec(ctx, creditWinner, amount, winnerID, guildID); err != nil {
		return fmt.Errorf("failed to credit winner %s: %w", winnerID, err)
	}

	return nil
}

// GetAllActiveGuilds returns the distinct guilds that currently have an
// active pot.
func (r *PotRepository) GetAllActiveGuilds(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT guild_id FROM pots WHERE is_active = TRUE`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active guilds: %w", err)
	}
	defer rows.Close()

	var guilds []string
	for rows.Next() {
		var guildID string
		if err := rows.Scan(&guildID); err != nil {
			return nil, fmt.Errorf("failed to scan guild ID: %w", err)
		}
		guilds = append(guilds, guildID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active guilds: %w", err)
	}

	return guilds, nil
}
