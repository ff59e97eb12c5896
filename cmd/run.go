package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"luckypot/bot"
	"luckypot/config"
	"luckypot/database"
	"luckypot/events"
	"luckypot/repository"
	"luckypot/service"
	"luckypot/stackcoin"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting lucky pot bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repository and StackCoin client
	potRepo := repository.NewPotRepository(db)
	stackcoinClient := stackcoin.NewClient(cfg.StackCoinBaseURL, cfg.StackCoinBotToken)

	// Initialize services
	log.Println("Initializing services...")
	entryService := service.NewEntryService(potRepo, stackcoinClient, cfg.EntryCost, cfg.InstantWinChance)
	drawService := service.NewDrawService(potRepo, stackcoinClient, eventBus, cfg.DailyDrawChance)
	reconcileService := service.NewReconcileService(potRepo, stackcoinClient, drawService)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.GuildID,
		Debug:             cfg.Debug,
		EntryCost:         cfg.EntryCost,
		ReconcileInterval: int(cfg.ReconcileInterval.Seconds()),
		DrawHourUTC:       cfg.DrawHourUTC,
	}
	discordBot, err := bot.New(botConfig, entryService, drawService, reconcileService, stackcoinClient, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start background workers
	stopReconcile := discordBot.StartReconciliationWorker(ctx)
	stopDailyDraw := discordBot.StartDailyDrawWorker(ctx)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	stopReconcile()
	stopDailyDraw()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
