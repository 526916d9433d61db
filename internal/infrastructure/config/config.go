// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// StoreBackend selects which snapshot store the server wires up.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreSQLite   StoreBackend = "sqlite"
)

// Config holds the flowr-server settings.
type Config struct {
	Addr         string       // listen address, e.g. ":8080"
	Store        StoreBackend // snapshot store backend
	PostgresDSN  string       // DSN when Store == postgres
	SQLitePath   string       // database path when Store == sqlite
	RuleSetPaths []string     // YAML rule set definitions loaded at boot
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getEnv("FLOWR_ADDR", ":8080"),
		Store:       StoreBackend(getEnv("FLOWR_STORE", string(StoreMemory))),
		PostgresDSN: getEnv("FLOWR_POSTGRES_DSN", ""),
		SQLitePath:  getEnv("FLOWR_SQLITE_PATH", "flowr.db"),
	}
	if paths := os.Getenv("FLOWR_RULESETS"); paths != "" {
		for _, p := range strings.Split(paths, ":") {
			if p != "" {
				cfg.RuleSetPaths = append(cfg.RuleSetPaths, p)
			}
		}
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("FLOWR_POSTGRES_DSN is required when FLOWR_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown FLOWR_STORE %q", cfg.Store)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvAsInt reads an integer from the environment with a fallback.
func GetEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
