package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akashgupta/spendlens/internal/aggregate"
	"github.com/akashgupta/spendlens/internal/api/handlers"
	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/config"
	"github.com/akashgupta/spendlens/internal/llm"
	"github.com/akashgupta/spendlens/internal/logger"
	"github.com/akashgupta/spendlens/internal/pipeline"
	"github.com/akashgupta/spendlens/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		port    = flag.String("port", "", "HTTP server port (overrides PORT env)")
		backend = flag.String("backend", "", "Data backend: memory, sqlite or bigquery (overrides DATA_BACKEND env)")
	)
	flag.Parse()

	log := logger.New()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *backend != "" {
		cfg.DataBackend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("Failed to open data store")
	}
	defer st.Close()

	completer, err := llm.NewGemini(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	assistant := pipeline.NewAssistant(st, completer, log)
	engine := aggregate.NewEngine(st)

	aiHandler := handlers.NewAIHandler(assistant, time.Now, log)
	txHandler := handlers.NewTransactionHandler(st, time.Now, log)
	statsHandler := handlers.NewStatsHandler(engine, time.Now, log)
	budgetHandler := handlers.NewBudgetHandler(st, engine, time.Now, log)
	categoryHandler := handlers.NewCategoryHandler(st, log)
	tagHandler := handlers.NewTagHandler(st, log)

	mux := http.NewServeMux()

	// AI endpoints
	mux.HandleFunc("POST /api/ai/review", aiHandler.Review)
	mux.HandleFunc("POST /api/ai/chat", aiHandler.Chat)
	mux.HandleFunc("POST /api/ai/insights", aiHandler.Insights)

	// Transactions endpoints
	mux.HandleFunc("GET /api/transactions", txHandler.List)
	mux.HandleFunc("POST /api/transactions", txHandler.Create)
	mux.HandleFunc("GET /api/transactions/{id}", txHandler.Get)
	mux.HandleFunc("PUT /api/transactions/{id}", txHandler.Update)
	mux.HandleFunc("DELETE /api/transactions/{id}", txHandler.Delete)

	// Stats endpoints
	mux.HandleFunc("GET /api/stats/summary", statsHandler.Summary)
	mux.HandleFunc("GET /api/stats/monthly", statsHandler.Monthly)
	mux.HandleFunc("GET /api/stats/expense-trend", statsHandler.ExpenseTrend)

	// Budgets endpoints
	mux.HandleFunc("GET /api/budgets", budgetHandler.List)
	mux.HandleFunc("POST /api/budgets", budgetHandler.Create)

	// Categories endpoints
	mux.HandleFunc("GET /api/categories", categoryHandler.List)
	mux.HandleFunc("POST /api/categories", categoryHandler.Create)

	// Tags endpoints
	mux.HandleFunc("GET /api/tags", tagHandler.List)
	mux.HandleFunc("POST /api/tags", tagHandler.Create)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware; RequestID wraps Logger so access logs carry the id.
	handler := middleware.Recovery(log)(
		middleware.RequestID(log)(
			middleware.Logger(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.DataBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
