// config/config.go
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto Config keys (SITE_ADMIN_EMAIL -> admin_email).
const EnvPrefix = "SITE_"

type Config struct {
	Addr           string `koanf:"addr"`
	DatabaseURL    string `koanf:"database_url"`
	AllowedOrigins string `koanf:"allowed_origins"`

	// Single-tenant admin gate. Login answers 503 while these are empty,
	// so the service itself can boot without them.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
	SessionSecret string `koanf:"session_secret"`

	SessionTTLHours        int `koanf:"session_ttl_hours"`
	RefreshIntervalMinutes int `koanf:"refresh_interval_minutes"`
}

// Load builds the configuration from defaults, an optional YAML file
// (SITE_CONFIG), and SITE_-prefixed environment variables, in that order.
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	cfg := &Config{
		Addr:                   ":5200",
		AllowedOrigins:         "http://localhost:3000",
		SessionTTLHours:        24,
		RefreshIntervalMinutes: 5,
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (set %sDATABASE_URL)", EnvPrefix)
	}
	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = 24
	}
	if cfg.RefreshIntervalMinutes <= 0 {
		cfg.RefreshIntervalMinutes = 5
	}

	return cfg, nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}
