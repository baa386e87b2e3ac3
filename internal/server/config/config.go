// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	// Address is the HTTP listen address.
	Address string `env:"ADDRESS" envDefault:":8080"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"promptomatik.db"`

	// JWTSecret signs issued tokens. The server refuses to issue tokens
	// without it; there is no default on purpose.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the fixed token lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// PasswordScheme selects the password hasher: "sha256" (legacy,
	// compatible with the existing user table) or "argon2id".
	PasswordScheme string `env:"PASSWORD_SCHEME" envDefault:"sha256"`

	// LogLevel is the slog level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PasswordScheme != "sha256" && cfg.PasswordScheme != "argon2id" {
		return nil, fmt.Errorf("unknown password scheme: %q", cfg.PasswordScheme)
	}

	return &cfg, nil
}
