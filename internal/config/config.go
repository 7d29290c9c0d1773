// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	BackendURL  string
	FrontendURL string
	DBPath      string
	UserName    string
	TripID      string // optional trip to join at startup
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8061"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8060"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3060"),
		DBPath:      getEnv("DB_PATH", "./data/chatd.db"),
		UserName:    getEnv("USER_NAME", ""),
		TripID:      getEnv("TRIP_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL %q is not a valid URL", c.BackendURL)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("BACKEND_URL scheme %q is not supported", u.Scheme)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
