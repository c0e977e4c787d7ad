// Package config loads service settings from the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the settings for cmd/server.
// An empty DatabaseURL selects in-memory storage; an empty RedisURL selects
// the log mailer.
type Config struct {
	Port              string        `env:"PORT,default=8080"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	RedisURL          string        `env:"REDIS_URL"`
	MailQueue         string        `env:"MAIL_QUEUE,default=storefront:mail:outbox"`
	RulesFile         string        `env:"RULES_FILE"`
	ScheduleSpec      string        `env:"SCHEDULE_SPEC,default=@every 1h"`
	StalePendingAfter time.Duration `env:"STALE_PENDING_AFTER,default=48h"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
}

// Load reads an optional .env file and decodes the environment
func Load() (*Config, error) {
	return LoadFiles()
}

// LoadFiles is Load with explicit .env paths. Missing files are ignored and
// variables already set in the environment win.
func LoadFiles(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.StalePendingAfter <= 0 {
		return fmt.Errorf("STALE_PENDING_AFTER must be positive, got %s", c.StalePendingAfter)
	}
	return nil
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return ":" + c.Port
}
