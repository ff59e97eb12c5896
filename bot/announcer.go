package bot

import (
	"context"

	log "github.com/sirupsen/logrus"

	"luckypot/events"

	"github.com/bwmarrin/discordgo"
)

// handlePotWonEvent posts the winner announcement in the guild's designated
// channel. Guilds without a designated channel are skipped silently.
func (b *Bot) handlePotWonEvent(ctx context.Context, event events.Event) {
	e, ok := event.(events.PotWonEvent)
	if !ok {
		return
	}

	b.announce(ctx, e.GuildID, CreateWinnerEmbed(e.WinnerID, e.Amount, e.Label))
}

// handlePotContinuesEvent posts the rollover announcement after a scheduled
// draw that kept the pot open.
func (b *Bot) handlePotContinuesEvent(ctx context.Context, event events.Event) {
	e, ok := event.(events.PotContinuesEvent)
	if !ok {
		return
	}

	b.announce(ctx, e.GuildID, CreatePotContinuesEmbed(e.TotalAmount, e.ParticipantCount))
}

func (b *Bot) announce(ctx context.Context, guildID string, embed *discordgo.MessageEmbed) {
	channelID, err := b.stackcoin.GetGuildChannel(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Failed to resolve announcement channel")
		return
	}
	if channelID == "" {
		log.WithField("guildID", guildID).Debug("Guild has no designated channel, skipping announcement")
		return
	}

	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": channelID,
		}).Error("Failed to send announcement")
	}
}
