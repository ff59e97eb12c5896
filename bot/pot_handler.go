package bot

import (
	"context"

	log "github.com/sirupsen/logrus"

	"luckypot/bot/common"
	"luckypot/models"
	"luckypot/service"

	"github.com/bwmarrin/discordgo"
)

// handleEnterPot runs the admission path for the invoking user.
func (b *Bot) handleEnterPot(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	// Admission makes ledger calls; defer to stay inside the interaction
	// deadline.
	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer enter-pot response")
		return
	}

	result, err := b.entryService.EnterPot(ctx, i.Member.User.ID, i.GuildID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"discordID": i.Member.User.ID,
			"guildID":   i.GuildID,
		}).Error("Pot entry failed")
		common.FollowUpWithError(s, i, "Something went wrong entering the pot. Try again later.")
		return
	}

	switch result.Outcome {
	case models.EntryOutcomeNotRegistered:
		common.FollowUpWithError(s, i, "You don't have a StackCoin account. Register with the StackCoin bot first.")
	case models.EntryOutcomeCooldownActive:
		common.FollowUpWithError(s, i, "You've already entered this pot. You can enter again in a few hours.")
	case models.EntryOutcomeRequestFailed:
		common.FollowUpWithError(s, i, "Couldn't create your payment request. Try again later.")
	case models.EntryOutcomeInstantWin:
		common.FollowUpWithEmbed(s, i, CreateInstantWinPendingEmbed(result), true)
	default:
		common.FollowUpWithEmbed(s, i, CreateEntryPendingEmbed(result), true)
	}
}

// handlePotStatus shows the current pot's aggregated standings.
func (b *Bot) handlePotStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	status, err := b.entryService.GetPotStatus(ctx, i.GuildID)
	if err != nil {
		log.WithError(err).WithField("guildID", i.GuildID).Error("Failed to get pot status")
		common.RespondWithError(s, i, "Couldn't fetch the pot status. Try again later.")
		return
	}

	if status == nil {
		common.RespondWithError(s, i, "There's no pot right now. Start one with /enter-pot!")
		return
	}

	common.RespondWithEmbed(s, i, CreatePotStatusEmbed(status), false)
}

// handleForceEndPot runs a manual draw. Only registered in debug mode.
func (b *Bot) handleForceEndPot(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer force-end-pot response")
		return
	}

	info, err := b.drawService.EndPotWithWinner(ctx, i.GuildID, service.LabelForcedDraw)
	if err != nil {
		log.WithError(err).WithField("guildID", i.GuildID).Error("Forced draw failed")
		common.FollowUpWithError(s, i, "The draw failed. The pot is still open.")
		return
	}
	if info == nil {
		common.FollowUpWithError(s, i, "No pot or no confirmed participants to draw from.")
		return
	}

	common.FollowUpWithEmbed(s, i, CreateWinnerEmbed(info.WinnerID, info.Amount, info.Label), true)
}
