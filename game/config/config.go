// Package config loads server configuration from the environment.
//
// Game-rule parameters (grid size, seats, walls, starting positions) are
// not configuration — they are fixed constants owned by the engine and
// board packages. What lives here is deployment-facing: listen address,
// database location, and the bot worker's operating parameters.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for every tunable. The bot budget and worker cadence are part
// of the game's contract with clients and rarely change.
const (
	DefaultHTTPAddr     = ":8080"
	DefaultDatabasePath = "data/bloqueio.db"

	// DefaultBotBudget caps one bot decision's wall-clock time.
	DefaultBotBudget = 5 * time.Second

	// DefaultPollInterval is the worker's job-table polling cadence.
	DefaultPollInterval = time.Second

	// DefaultBatchSize caps how many pending jobs one poll claims.
	DefaultBatchSize = 10
)

// Config holds the server's runtime settings.
type Config struct {
	HTTPAddr     string
	DatabasePath string
	BotBudget    time.Duration
	PollInterval time.Duration
	BatchSize    int
	Debug        bool
}

// Load builds a Config from environment variables, falling back to the
// defaults above. Unparseable values fall back silently; a bad env var
// should not keep the server down.
func Load() *Config {
	return &Config{
		HTTPAddr:     envString("HTTP_ADDR", DefaultHTTPAddr),
		DatabasePath: envString("DATABASE_PATH", DefaultDatabasePath),
		BotBudget:    envDuration("BOT_BUDGET", DefaultBotBudget),
		PollInterval: envDuration("BOT_POLL_INTERVAL", DefaultPollInterval),
		BatchSize:    envInt("BOT_BATCH_SIZE", DefaultBatchSize),
		Debug:        envString("DEBUG", "") != "",
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
