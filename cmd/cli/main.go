package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/aggregate"
	"github.com/akashgupta/spendlens/internal/config"
	"github.com/akashgupta/spendlens/internal/ledger"
	"github.com/akashgupta/spendlens/internal/llm"
	"github.com/akashgupta/spendlens/internal/logger"
	"github.com/akashgupta/spendlens/internal/pipeline"
	"github.com/akashgupta/spendlens/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "summary":
		runSummary(log)
	case "insights":
		runInsights(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SpendLens CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract   Turn free text into candidate transactions")
	fmt.Println("  summary   Print the monthly summary for a user")
	fmt.Println("  insights  Generate spending insights for a user")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func openStore(ctx context.Context, log zerolog.Logger) ledger.Store {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("Failed to open data store")
	}
	return st
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	user := fs.String("user", "", "User ID")
	text := fs.String("text", "", "Free text describing one or more transactions")
	fs.Parse(os.Args[2:])

	if *user == "" || *text == "" {
		log.Fatal().Msg("Error: --user and --text are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st := openStore(ctx, log)
	defer st.Close()

	completer, err := llm.NewGemini(ctx, config.Load().GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	assistant := pipeline.NewAssistant(st, completer, log)
	candidates, err := assistant.Extract(ctx, *user, *text, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	printJSON(candidates)
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	user := fs.String("user", "", "User ID")
	month := fs.Int("month", int(time.Now().Month()), "Month (1-12)")
	year := fs.Int("year", time.Now().Year(), "Year")
	fs.Parse(os.Args[2:])

	if *user == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st := openStore(ctx, log)
	defer st.Close()

	engine := aggregate.NewEngine(st)
	summary, err := engine.MonthlySummary(ctx, *user, *month, *year)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build summary")
	}

	printJSON(summary)
}

func runInsights(log zerolog.Logger) {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	user := fs.String("user", "", "User ID")
	fs.Parse(os.Args[2:])

	if *user == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st := openStore(ctx, log)
	defer st.Close()

	completer, err := llm.NewGemini(ctx, config.Load().GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	assistant := pipeline.NewAssistant(st, completer, log)
	report, err := assistant.Insights(ctx, *user)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate insights")
	}

	printJSON(report)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
