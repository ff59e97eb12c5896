package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"luckypot/events"
	"luckypot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string // optional: restrict command registration to one guild
	Debug             bool   // enables the force-end-pot command
	EntryCost         int64  // fixed cost of one pot entry, surfaced in command copy
	ReconcileInterval int    // seconds between reconciliation ticks
	DrawHourUTC       int    // hour of the scheduled daily draw
}

type Bot struct {
	config           Config
	session          *discordgo.Session
	entryService     service.EntryService
	drawService      service.DrawService
	reconcileService service.ReconcileService
	stackcoin        service.StackCoinClient
	eventBus         *events.Bus
}

func New(config Config, entryService service.EntryService, drawService service.DrawService, reconcileService service.ReconcileService, stackcoinClient service.StackCoinClient, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:           config,
		session:          dg,
		entryService:     entryService,
		drawService:      drawService,
		reconcileService: reconcileService,
		stackcoin:        stackcoinClient,
		eventBus:         eventBus,
	}

	// Register slash command and mention handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleMention)

	// Announce pot results through the guild's designated channel
	eventBus.Subscribe(events.EventTypePotWon, bot.handlePotWonEvent)
	eventBus.Subscribe(events.EventTypePotContinues, bot.handlePotContinuesEvent)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.Info("Discord bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands dispatches slash command interactions
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx := context.Background()

	switch i.ApplicationCommandData().Name {
	case "enter-pot":
		b.handleEnterPot(ctx, s, i)
	case "pot-status":
		b.handlePotStatus(ctx, s, i)
	case "force-end-pot":
		b.handleForceEndPot(ctx, s, i)
	}
}
