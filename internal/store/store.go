// Package store selects a concrete ledger backend from configuration.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/config"
	"github.com/akashgupta/spendlens/internal/ledger"
	"github.com/akashgupta/spendlens/internal/store/bigquery"
	"github.com/akashgupta/spendlens/internal/store/memory"
	"github.com/akashgupta/spendlens/internal/store/sqlite"
)

// Open builds the ledger store named by cfg.DataBackend.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ledger.Store, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory ledger store, data will not survive a restart")
		return memory.New(), nil
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLiteDBPath, log)
	case config.BackendBigQuery:
		return bigquery.Open(ctx, cfg.BQProjectID, cfg.BQDataset, log)
	default:
		return nil, fmt.Errorf("store: unsupported backend %q", cfg.DataBackend)
	}
}
