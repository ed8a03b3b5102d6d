package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// TagHandler serves tag listing and creation.
type TagHandler struct {
	store ledger.Store
	log   zerolog.Logger
}

func NewTagHandler(store ledger.Store, log zerolog.Logger) *TagHandler {
	return &TagHandler{store: store, log: log}
}

// List handles GET /api/tags?user_id=.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	tags, err := h.store.Tags(r.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", uid).Msg("Failed to list tags")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
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

	tag := domain.Tag{UserID: req.UserID, Name: req.Name}
	created, err := h.store.InsertTag(r.Context(), tag)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to insert tag")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create tag")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}
