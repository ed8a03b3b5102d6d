package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/aggregate"
	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// BudgetHandler serves budgets together with their consumption figures.
type BudgetHandler struct {
	store  ledger.Store
	engine *aggregate.Engine
	now    func() time.Time
	log    zerolog.Logger
}

func NewBudgetHandler(store ledger.Store, engine *aggregate.Engine, now func() time.Time, log zerolog.Logger) *BudgetHandler {
	if now == nil {
		now = time.Now
	}
	return &BudgetHandler{store: store, engine: engine, now: now, log: log}
}

// List handles GET /api/budgets?user_id=&month=&year=. Each budget carries
// current_spent computed over the requested month.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	month, year := monthYear(r, h.now())

	budgets, err := h.engine.BudgetConsumption(r.Context(), uid, month, year)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to compute budget consumption")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch budgets")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// Create handles POST /api/budgets.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string  `json:"user_id"`
		CategoryID   string  `json:"category_id"`
		CategoryName string  `json:"category_name"`
		MonthlyLimit float64 `json:"monthly_limit"`
		Month        int     `json:"month"`
		Year         int     `json:"year"`
		Icon         string  `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.MonthlyLimit <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Monthly limit must be positive")
		return
	}
	now := h.now()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month < 1 || req.Month > 12 {
		middleware.WriteError(w, http.StatusBadRequest, "Month must be between 1 and 12")
		return
	}

	if req.CategoryID == "" && req.CategoryName != "" {
		id, err := ledger.ResolveCategoryID(r.Context(), h.store, req.UserID, req.CategoryName)
		if err != nil {
			h.log.Error().Err(err).Msg("Category lookup failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to resolve category")
			return
		}
		req.CategoryID = id
	}

	budget := domain.Budget{
		UserID:       req.UserID,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		MonthlyLimit: req.MonthlyLimit,
		Month:        req.Month,
		Year:         req.Year,
		Icon:         req.Icon,
	}
	created, err := h.store.InsertBudget(r.Context(), budget)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to insert budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create budget")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}
