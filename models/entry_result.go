package models

// EntryOutcome classifies the result of an entry admission attempt.
// Rejections are outcomes, not errors; no state is created for them.
type EntryOutcome string

const (
	// EntryOutcomeEntered means the entry was persisted and awaits
	// confirmation of its payment request.
	EntryOutcomeEntered EntryOutcome = "entered"
	// EntryOutcomeInstantWin means the entry rolled an instant win; the
	// payout still waits on the debit being confirmed.
	EntryOutcomeInstantWin EntryOutcome = "instant_win"
	// EntryOutcomeNotRegistered means the user has no StackCoin account.
	EntryOutcomeNotRegistered EntryOutcome = "not_registered"
	// EntryOutcomeCooldownActive means the user already entered this pot
	// within the cooldown window.
	EntryOutcomeCooldownActive EntryOutcome = "cooldown_active"
	// EntryOutcomeRequestFailed means the payment request could not be
	// created; no entry row was persisted.
	EntryOutcomeRequestFailed EntryOutcome = "request_failed"
)

// EntryResult is the presentation-independent outcome of an entry attempt.
type EntryResult struct {
	Outcome   EntryOutcome
	EntryID   int64
	PotID     int64
	EntryCost int64
	PotTotal  int64 // confirmed total including this entry's cost
	RequestID string
}

// WinnerInfo describes a completed pot payout.
type WinnerInfo struct {
	GuildID  string
	WinnerID string
	Amount   int64
	Label    string
}
