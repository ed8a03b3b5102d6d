package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// TransactionHandler covers the transaction CRUD surface.
type TransactionHandler struct {
	store ledger.Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewTransactionHandler(store ledger.Store, now func() time.Time, log zerolog.Logger) *TransactionHandler {
	if now == nil {
		now = time.Now
	}
	return &TransactionHandler{store: store, now: now, log: log}
}

// List handles GET /api/transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	filter := ledger.TxFilter{
		UserID:   uid,
		Type:     domain.TxType(r.URL.Query().Get("type")),
		DateDesc: true,
		Limit:    intQuery(r, "limit", 0),
	}
	txs, err := h.store.Transactions(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// Create handles POST /api/transactions. The body is a candidate in the
// extraction shape: missing type, payment mode and date take defaults,
// anything structurally unusable is rejected with the reason.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		domain.Candidate
		CategoryID string   `json:"category_id"`
		TagIDs     []string `json:"tag_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := domain.ValidateCandidate(req.UserID, req.Candidate, h.now())
	if result.Rejected {
		middleware.WriteError(w, http.StatusBadRequest, result.Reason)
		return
	}
	tx := result.Tx

	if req.CategoryID != "" {
		tx.CategoryID = req.CategoryID
	} else if tx.CategoryName != "" {
		id, err := ledger.ResolveCategoryID(r.Context(), h.store, req.UserID, tx.CategoryName)
		if err != nil {
			h.log.Error().Err(err).Msg("Category lookup failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to resolve category")
			return
		}
		tx.CategoryID = id
	}

	created, err := h.store.InsertTransaction(r.Context(), tx)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	if len(req.TagIDs) > 0 {
		if err := h.store.AttachTags(r.Context(), created.ID, req.TagIDs); err != nil {
			// The transaction itself is saved; tags are best-effort.
			h.log.Warn().Err(err).Str("transaction_id", created.ID).Msg("Failed to attach tags")
		}
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.store.TransactionByID(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.store.TransactionByID(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req struct {
		domain.Candidate
		CategoryID *string  `json:"category_id"`
		TagIDs     []string `json:"tag_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := domain.ValidateCandidate(existing.UserID, req.Candidate, existing.Date)
	if result.Rejected {
		middleware.WriteError(w, http.StatusBadRequest, result.Reason)
		return
	}
	tx := result.Tx
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	if req.CategoryID != nil {
		tx.CategoryID = *req.CategoryID
	} else {
		tx.CategoryID = existing.CategoryID
	}

	updated, err := h.store.UpdateTransaction(r.Context(), tx)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	if req.TagIDs != nil {
		if err := h.store.ReplaceTags(r.Context(), id, req.TagIDs); err != nil {
			h.log.Warn().Err(err).Str("transaction_id", id).Msg("Failed to replace tags")
		}
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
