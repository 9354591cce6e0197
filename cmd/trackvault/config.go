package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"trackvault/internal/logging"
	"trackvault/internal/musicapi"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string   `env:"DATABASE_URL"`
	Port           int      `env:"PORT" envDefault:"3000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	StaticDir      string   `env:"STATIC_DIR"`
	MigrateOnStart bool     `env:"MIGRATE_ON_START" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	CatalogProvider      string        `env:"CATALOG_PROVIDER" envDefault:"itunes"`
	CatalogTimeout       time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	ITunesBaseURL        string        `env:"ITUNES_BASE_URL"`
	AppleMusicBaseURL    string        `env:"APPLE_MUSIC_BASE_URL"`
	AppleMusicKeyID      string        `env:"APPLE_MUSIC_KEY_ID"`
	AppleMusicTeamID     string        `env:"APPLE_MUSIC_TEAM_ID"`
	AppleMusicPrivateKey string        `env:"APPLE_MUSIC_PRIVATE_KEY"`
	AppleMusicStorefront string        `env:"APPLE_MUSIC_STOREFRONT" envDefault:"us"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load(".env", "config/local.env")
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.AllowedOrigins = parseAllowedOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DatabaseURL) == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if len(c.AllowedOrigins) == 0 {
		problems = append(problems, "CORS_ALLOWED_ORIGINS must name at least one origin or *")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.LogFormat] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	switch musicapi.Provider(c.CatalogProvider) {
	case musicapi.ProviderITunes:
	case musicapi.ProviderAppleMusic:
		if c.AppleMusicKeyID == "" || c.AppleMusicTeamID == "" || c.AppleMusicPrivateKey == "" {
			problems = append(problems, "APPLE_MUSIC_KEY_ID, APPLE_MUSIC_TEAM_ID and APPLE_MUSIC_PRIVATE_KEY are required for the applemusic provider")
		}
	default:
		problems = append(problems, "CATALOG_PROVIDER must be one of: itunes, applemusic")
	}
	if c.CatalogTimeout <= 0 {
		problems = append(problems, "CATALOG_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

func (c Config) catalog() musicapi.Config {
	return musicapi.Config{
		Provider:             musicapi.Provider(c.CatalogProvider),
		ITunesBaseURL:        c.ITunesBaseURL,
		AppleMusicBaseURL:    c.AppleMusicBaseURL,
		AppleMusicKeyID:      c.AppleMusicKeyID,
		AppleMusicTeamID:     c.AppleMusicTeamID,
		AppleMusicPrivateKey: c.AppleMusicPrivateKey,
		AppleMusicStorefront: c.AppleMusicStorefront,
		RequestTimeout:       c.CatalogTimeout,
	}
}

func parseAllowedOrigins(raw []string) []string {
	var origins []string
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
