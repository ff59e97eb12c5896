package bot

import (
	"fmt"
	"strings"

	"luckypot/bot/common"
	"luckypot/models"

	"github.com/bwmarrin/discordgo"
)

// CreateEntryPendingEmbed tells the user their entry is in and waiting on
// the StackCoin payment request.
func CreateEntryPendingEmbed(result *models.EntryResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎟️ You're in the pot!",
		Description: fmt.Sprintf("A payment request for **%d STK** has been sent to you on StackCoin. Accept it within the hour to confirm your entry.", result.EntryCost),
		Color:       common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Pot Total",
				Value:  fmt.Sprintf("%d STK", result.PotTotal),
				Inline: true,
			},
		},
	}
}

// CreateInstantWinPendingEmbed tells the user they rolled an instant win
// that still hinges on the entry payment going through.
func CreateInstantWinPendingEmbed(result *models.EntryResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚡ Instant win!",
		Description: fmt.Sprintf("You rolled an instant win! Accept the **%d STK** payment request on StackCoin within the hour and the whole pot is yours.", result.EntryCost),
		Color:       common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Pot Total",
				Value:  fmt.Sprintf("%d STK", result.PotTotal),
				Inline: true,
			},
		},
	}
}

// CreatePotStatusEmbed renders the current pot's standings.
func CreatePotStatusEmbed(status *models.PotStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🍀 Lucky Pot",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Total",
				Value:  fmt.Sprintf("%d STK", status.TotalAmount),
				Inline: true,
			},
			{
				Name:   "Participants",
				Value:  fmt.Sprintf("%d", status.ParticipantCount),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Pot opened %s", status.CreatedAt.Format("Jan 2, 2006")),
		},
	}

	if len(status.Participants) > 0 {
		var sb strings.Builder
		for _, p := range status.Participants {
			fmt.Fprintf(&sb, "<@%s>: %d entries (%d STK)\n", p.DiscordID, p.EntryCount, p.TotalAmount)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Entries",
			Value: sb.String(),
		})
	}

	return embed
}

// CreateWinnerEmbed announces a pot payout.
func CreateWinnerEmbed(winnerID string, amount int64, label string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎉 We have a winner!",
		Description: fmt.Sprintf("<@%s> won the pot of **%d STK**!", winnerID, amount),
		Color:       common.ColorGold,
		Footer: &discordgo.MessageEmbedFooter{
			Text: label,
		},
	}
}

// CreatePotContinuesEmbed announces a scheduled draw that kept the pot open.
func CreatePotContinuesEmbed(totalAmount int64, participantCount int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🍀 The pot rolls over!",
		Description: fmt.Sprintf("Nobody won today. The pot of **%d STK** keeps growing with %d participants so far.", totalAmount, participantCount),
		Color:       common.ColorInfo,
	}
}
