package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/akashgupta/spendlens/internal/logger"
	"github.com/akashgupta/spendlens/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", os.Getenv("SQLITE_DB_PATH"), "Path to the SQLite database file (or set SQLITE_DB_PATH env)")
	flag.Parse()

	log := logger.New()

	if *dbPath == "" {
		log.Fatal().Msg("Error: -db flag or SQLITE_DB_PATH env is required")
	}

	if err := sqlite.RunMigrations(*dbPath); err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("Migrations failed")
	}

	log.Info().Str("db", *dbPath).Msg("Migrations applied")
}
