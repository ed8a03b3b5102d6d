package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/api/middleware"
	"github.com/akashgupta/spendlens/internal/llm"
	"github.com/akashgupta/spendlens/internal/pipeline"
)

// AIHandler exposes the language-model-backed endpoints.
type AIHandler struct {
	assistant *pipeline.Assistant
	now       func() time.Time
	log       zerolog.Logger
}

func NewAIHandler(assistant *pipeline.Assistant, now func() time.Time, log zerolog.Logger) *AIHandler {
	if now == nil {
		now = time.Now
	}
	return &AIHandler{assistant: assistant, now: now, log: log}
}

// Review handles POST /api/ai/review: free text in, candidate transactions
// out. An unusable model reply yields an empty list, never an error.
func (h *AIHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}

	candidates, err := h.assistant.Extract(r.Context(), req.UserID, req.Text, h.now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": candidates})
}

// Chat handles POST /api/ai/chat.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string        `json:"user_id"`
		Messages []llm.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Messages array is required")
		return
	}

	content, err := h.assistant.Chat(r.Context(), req.UserID, req.Messages)
	if err != nil {
		h.log.Error().Err(err).Msg("Chat failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get AI response")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"content": content})
}

// Insights handles POST /api/ai/insights.
func (h *AIHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	report, err := h.assistant.Insights(r.Context(), req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Insights failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}
