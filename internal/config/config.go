// Package config holds the runtime configuration, loaded from the
// environment with sensible defaults. Callers load a .env file first (via
// godotenv) when one exists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

type Config struct {
	// HTTP server
	Port string

	// Ledger store
	DataBackend  string
	SQLiteDBPath string
	BQProjectID  string
	BQDataset    string

	// Language model
	GeminiModel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendlens.db"),
		BQProjectID:  getEnv("BQ_PROJECT_ID", ""),
		BQDataset:    getEnv("BQ_DATASET", "finance"),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH is required for the sqlite backend")
		}
	case BackendBigQuery:
		if c.BQProjectID == "" {
			problems = append(problems, "BQ_PROJECT_ID is required for the bigquery backend")
		}
		if c.BQDataset == "" {
			problems = append(problems, "BQ_DATASET is required for the bigquery backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be one of memory, sqlite, bigquery", c.DataBackend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
