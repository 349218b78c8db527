// Package config reads the service settings from the environment, an
// optional .env file and an optional feed YAML overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/junaidrashid-git/storefront/feed"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// DatabaseDSN is empty when StorageDriver is "memory".
	StorageDriver string
	DatabaseDSN   string

	JWTSecret     string
	GuestTokenTTL time.Duration
	SessionTTL    time.Duration
	GuestCartIdle time.Duration
	AdminAPIKey   string

	APIBaseURL    string
	APITimeout    time.Duration
	APIMaxRetries int

	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	Feed feed.Config
	// FeedUpstreamURL, when set, relays another feed stream to the hub.
	FeedUpstreamURL string
}

// Load reads .env (if present), then the environment, then the FEED_CONFIG
// file (if set).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:          orDefault(getenv("PORT"), "8080"),
		AppEnv:        orDefault(getenv("APP_ENV"), "production"),
		LogLevel:      orDefault(getenv("LOG_LEVEL"), "info"),
		StorageDriver: orDefault(getenv("STORAGE_DRIVER"), "postgres"),
		JWTSecret:     getenv("JWT_SECRET"),
		AdminAPIKey:   getenv("ADMIN_API_KEY"),
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL"), "/"),
		Feed:          feed.DefaultConfig(),

		FeedUpstreamURL: getenv("FEED_UPSTREAM_URL"),
	}

	var err error
	if cfg.GuestTokenTTL, err = duration(getenv, "GUEST_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = duration(getenv, "SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.GuestCartIdle, err = duration(getenv, "GUEST_CART_IDLE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = duration(getenv, "API_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = duration(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if v := getenv("API_MAX_RETRIES"); v != "" {
		if cfg.APIMaxRetries, err = strconv.Atoi(v); err != nil || cfg.APIMaxRetries < 0 {
			return nil, fmt.Errorf("config: API_MAX_RETRIES: invalid value %q", v)
		}
	}

	cfg.AllowedOrigins = []string{"*"}
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	switch cfg.StorageDriver {
	case "memory":
	case "postgres":
		cfg.DatabaseDSN = databaseDSN(getenv)
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if path := getenv("FEED_CONFIG"); path != "" {
		if err := cfg.loadFeed(path); err != nil {
			return nil, err
		}
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API_BASE_URL is required")
	}
	return cfg, nil
}

// IsDev reports whether the service runs with development logging.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// loadFeed overlays the YAML file at path on the feed defaults. Keys absent
// from the file keep their default.
func (c *Config) loadFeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read feed config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.Feed); err != nil {
		return fmt.Errorf("config: parse feed config: %w", err)
	}
	for name, p := range map[string]float64{
		"inventory_probability": c.Feed.InventoryProbability,
		"activity_probability":  c.Feed.ActivityProbability,
		"order_probability":     c.Feed.OrderProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config: feed %s must be within [0,1], got %v", name, p)
		}
	}
	return nil
}

func databaseDSN(getenv func(string) string) string {
	if url := getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenv("DB_HOST"), getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_NAME"), getenv("DB_PORT"),
	)
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
