package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/aggregate"
	"github.com/akashgupta/spendlens/internal/api/middleware"
)

// StatsHandler serves the aggregation endpoints.
type StatsHandler struct {
	engine *aggregate.Engine
	now    func() time.Time
	log    zerolog.Logger
}

func NewStatsHandler(engine *aggregate.Engine, now func() time.Time, log zerolog.Logger) *StatsHandler {
	if now == nil {
		now = time.Now
	}
	return &StatsHandler{engine: engine, now: now, log: log}
}

// Summary handles GET /api/stats/summary?user_id=&month=&year=.
// Month and year default to the current ones.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	month, year := monthYear(r, h.now())

	summary, err := h.engine.MonthlySummary(r.Context(), uid, month, year)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to build monthly summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}

// Monthly handles GET /api/stats/monthly?user_id=: income and expense
// totals for the last six months, oldest first.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	points, err := h.engine.MonthlyTrend(r.Context(), uid, h.now())
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to build monthly trend")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch monthly stats")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"months": points})
}

// ExpenseTrend handles GET /api/stats/expense-trend?user_id=&month=&year=:
// one entry per calendar day of the month.
func (h *StatsHandler) ExpenseTrend(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	month, year := monthYear(r, h.now())

	days, err := h.engine.DailyExpenseTrend(r.Context(), uid, month, year)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to build expense trend")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch expense trend")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"days": days})
}
