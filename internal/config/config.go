package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// It is fixed at process start and never mutated afterwards.
type Config struct {
	BotToken     string  `envconfig:"BOT_TOKEN" required:"true"`
	DBPath       string  `envconfig:"DB_PATH" default:"./data/crewbot.db"`
	AdminIDs     []int64 `envconfig:"ADMIN_IDS"`                     // comma-separated
	Timezone     string  `envconfig:"TZ_NAME" default:"Europe/Oslo"` // scheduler timezone
	DigestHour   int     `envconfig:"DIGEST_HOUR" default:"9"`
	DigestMinute int     `envconfig:"DIGEST_MINUTE" default:"0"`
	LogLevel     string  `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr     string  `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config and validates them.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("invalid TZ_NAME %q: %w", cfg.Timezone, err)
	}
	if cfg.DigestHour < 0 || cfg.DigestHour > 23 || cfg.DigestMinute < 0 || cfg.DigestMinute > 59 {
		return cfg, fmt.Errorf("invalid digest time %02d:%02d", cfg.DigestHour, cfg.DigestMinute)
	}
	return cfg, nil
}

// Location returns the parsed scheduler timezone. Load has already
// validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
