package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// commandDefinitions builds the slash command set from the bot's
// configuration.
func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "enter-pot",
			Description: fmt.Sprintf("Enter the lucky pot for %d STK", b.config.EntryCost),
		},
		{
			Name:        "pot-status",
			Description: "Show the current pot and its participants",
		},
	}

	if b.config.Debug {
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        "force-end-pot",
			Description: "End the current pot immediately (debug)",
		})
	}

	return commands
}

// registerCommands registers all slash commands with Discord. When a guild
// ID is configured the commands are registered guild-scoped, which makes
// them available immediately instead of after global propagation.
func (b *Bot) registerCommands() error {
	for _, cmd := range b.commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create command %s: %w", cmd.Name, err)
		}
	}

	return nil
}
