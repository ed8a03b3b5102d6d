package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// CategoryHandler serves category listing and creation. Categories are
// never created implicitly; an unknown name on a transaction simply
// leaves it uncategorized.
type CategoryHandler struct {
	store ledger.Store
	log   zerolog.Logger
}

func NewCategoryHandler(store ledger.Store, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{store: store, log: log}
}

// List handles GET /api/categories?user_id=&type=.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	txType := domain.TxType(r.URL.Query().Get("type"))
	categories, err := h.store.Categories(r.Context(), uid, txType)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Type   string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	txType := domain.TxType(req.Type)
	if !txType.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Type must be income or expense")
		return
	}

	category := domain.Category{
		UserID: req.UserID,
		Name:   req.Name,
		Type:   txType,
	}
	created, err := h.store.InsertCategory(r.Context(), category)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to insert category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}
