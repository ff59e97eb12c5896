package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bwmarrin/discordgo"
)

// handleMention replies with the bot's own StackCoin balance when it is
// mentioned directly. Acts as a cheap liveness check for operators.
func (b *Bot) handleMention(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return
	}

	balance, err := b.stackcoin.SelfBalance(context.Background())
	if err != nil {
		log.WithError(err).Error("Failed to fetch self balance")
		if _, err := s.ChannelMessageSend(m.ChannelID, "I couldn't reach StackCoin right now."); err != nil {
			log.WithError(err).Error("Failed to send mention reply")
		}
		return
	}

	reply := fmt.Sprintf("I'm %s and I'm holding **%d STK** right now. 🍀", balance.Username, balance.Balance)
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		log.WithError(err).Error("Failed to send mention reply")
	}
}
