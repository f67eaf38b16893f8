// Package config loads server configuration from the environment, with an
// optional YAML file overlay. A .env file in the working directory is loaded
// first when present.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gold360/backoffice/internal/app/auth"
)

// Config is the full server configuration.
type Config struct {
	Server struct {
		Addr            string        `env:"SERVER_ADDR,default=:8080" yaml:"addr"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s" yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		// DSN is the Postgres connection string. Empty selects the
		// in-memory store.
		DSN string `env:"DATABASE_URL" yaml:"dsn"`
	} `yaml:"database"`

	Redis struct {
		// Addr enables the Redis product cache when set.
		Addr string        `env:"REDIS_ADDR" yaml:"addr"`
		TTL  time.Duration `env:"REDIS_TTL,default=5m" yaml:"ttl"`
	} `yaml:"redis"`

	Auth struct {
		// Secret signs issued JWTs. Login is disabled when empty.
		Secret   string        `env:"AUTH_SECRET" yaml:"secret"`
		TokenTTL time.Duration `env:"AUTH_TOKEN_TTL,default=12h" yaml:"token_ttl"`
		// Tokens are static bearer tokens, semicolon separated.
		Tokens []string `env:"API_TOKENS" yaml:"tokens"`
		// Users declares login users as user:password:role entries,
		// semicolon separated.
		Users []string `env:"AUTH_USERS" yaml:"users"`
	} `yaml:"auth"`

	Audit struct {
		Max      int    `env:"AUDIT_MAX,default=200" yaml:"max"`
		FilePath string `env:"AUDIT_FILE" yaml:"file_path"`
	} `yaml:"audit"`

	Rate struct {
		RPS   float64 `env:"RATE_RPS,default=0" yaml:"rps"`
		Burst int     `env:"RATE_BURST,default=0" yaml:"burst"`
	} `yaml:"rate"`

	Loyalty struct {
		// ExpirySchedule is a cron expression for the point expiry sweep.
		ExpirySchedule string `env:"LOYALTY_EXPIRY_SCHEDULE,default=@daily" yaml:"expiry_schedule"`
	} `yaml:"loyalty"`
}

// Load reads configuration from the environment. When path is non-empty the
// named YAML file overrides environment values.
func Load(path string) (Config, error) {
	// Best-effort; a missing .env is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	return cfg, nil
}

// AuthUsers parses the configured user entries into auth users.
func (c Config) AuthUsers() ([]auth.User, error) {
	var users []auth.User
	for _, entry := range c.Auth.Users {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid auth user entry %q, want user:password:role", entry)
		}
		users = append(users, auth.User{
			Username: strings.TrimSpace(parts[0]),
			Password: parts[1],
			Role:     strings.TrimSpace(parts[2]),
		})
	}
	return users, nil
}
