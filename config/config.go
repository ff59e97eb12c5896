package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // optional: restrict command registration to one guild

	// StackCoin configuration
	StackCoinBaseURL  string
	StackCoinBotToken string

	// Database configuration
	DatabaseURL string

	// Pot mechanics
	EntryCost         int64         // fixed cost of one pot entry
	InstantWinChance  float64       // rolled independently per entry
	DailyDrawChance   float64       // chance the scheduled draw actually pays out
	DrawHourUTC       int           // hour of the scheduled daily draw (0-23)
	ReconcileInterval time.Duration // time between reconciliation ticks

	// Debug mode enables the force-end-pot command
	Debug bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, reading a .env file first
// if one is present.
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:      os.Getenv("LUCKY_POT_DISCORD_TOKEN"),
		GuildID:           os.Getenv("LUCKY_POT_GUILD_ID"),
		StackCoinBaseURL:  os.Getenv("LUCKY_POT_STACKCOIN_BASE_URL"),
		StackCoinBotToken: os.Getenv("LUCKY_POT_STACKCOIN_BOT_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		// Pot mechanics with defaults
		EntryCost:         5,
		InstantWinChance:  0.05,
		DailyDrawChance:   0.40,
		DrawHourUTC:       20, // 8:00 PM UTC default
		ReconcileInterval: 30 * time.Second,

		Debug:       os.Getenv("LUCKY_POT_DEBUG") == "true",
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.StackCoinBaseURL == "" {
		config.StackCoinBaseURL = "https://stackcoin.world"
	}

	// Override defaults if environment variables are set
	if cost := os.Getenv("LUCKY_POT_ENTRY_COST"); cost != "" {
		if parsedCost, err := strconv.ParseInt(cost, 10, 64); err == nil && parsedCost > 0 {
			config.EntryCost = parsedCost
		}
	}
	if hour := os.Getenv("LUCKY_POT_DRAW_HOUR_UTC"); hour != "" {
		if parsedHour, err := strconv.Atoi(hour); err == nil && parsedHour >= 0 && parsedHour <= 23 {
			config.DrawHourUTC = parsedHour
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("LUCKY_POT_DISCORD_TOKEN is required")
		}
		if config.StackCoinBotToken == "" {
			return nil, fmt.Errorf("LUCKY_POT_STACKCOIN_BOT_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
