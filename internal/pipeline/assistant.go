package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
	"github.com/akashgupta/spendlens/internal/llm"
)

// Assistant is the language-model-facing side of the service: natural-language
// transaction extraction, grounded chat, and ledger insights. It reads the
// ledger but never writes it.
type Assistant struct {
	reader  ledger.Reader
	llm     llm.Completer
	builder *ContextBuilder
	log     zerolog.Logger
}

func NewAssistant(reader ledger.Reader, completer llm.Completer, log zerolog.Logger) *Assistant {
	return &Assistant{
		reader:  reader,
		llm:     completer,
		builder: NewContextBuilder(reader, log),
		log:     log,
	}
}

// Extract converts free-form text describing financial activity into zero or
// more candidate transactions. today anchors relative-date defaulting and is
// injected so callers (and tests) control the clock. A model failure or
// unparseable output degrades to an empty slice; only caller contract
// violations return an error.
func (a *Assistant) Extract(ctx context.Context, userID, freeText string, today time.Time) ([]domain.Candidate, error) {
	if userID == "" {
		return nil, fmt.Errorf("Extract: user id is required")
	}
	if strings.TrimSpace(freeText) == "" {
		return nil, fmt.Errorf("Extract: input text is required")
	}

	contextBlock := a.builder.Build(ctx, userID, ReviewContextLimit)
	categorySummary := a.categorySummary(ctx, userID)

	raw, err := a.llm.Complete(ctx, []llm.Message{
		llm.System(extractionInstruction(today)),
		llm.User(extractionPrompt(freeText, contextBlock, categorySummary, today)),
	})
	if err != nil {
		a.log.Warn().Err(err).Str("user_id", userID).Msg("Extraction model call failed")
		return []domain.Candidate{}, nil
	}

	candidates := parseCandidates(raw)
	if candidates == nil {
		a.log.Warn().Str("user_id", userID).Msg("Model output was not valid JSON")
		return []domain.Candidate{}, nil
	}
	return candidates, nil
}

// categorySummary renders the user's all-time expense totals by category,
// independent of the extraction context window. Failures degrade to an empty
// summary.
func (a *Assistant) categorySummary(ctx context.Context, userID string) string {
	txs, err := a.reader.Transactions(ctx, ledger.TxFilter{UserID: userID, Type: domain.Expense})
	if err != nil {
		a.log.Warn().Err(err).Str("user_id", userID).Msg("Category summary read failed")
		return ""
	}
	top := topExpenseCategories(txs, 10)
	if len(top) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range top {
		fmt.Fprintf(&sb, "- %s: %s\n", c.name, rupees(c.amount))
	}
	return sb.String()
}

// Chat answers a conversation grounded in the user's recent ledger. userID
// may be empty, in which case the assistant declines questions about history.
func (a *Assistant) Chat(ctx context.Context, userID string, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("Chat: messages are required")
	}

	var contextBlock string
	if userID != "" {
		contextBlock = a.builder.Build(ctx, userID, ChatContextLimit)
	}

	transcript := append([]llm.Message{llm.System(chatInstruction(contextBlock))}, messages...)
	reply, err := a.llm.Complete(ctx, transcript)
	if err != nil {
		return "", fmt.Errorf("Chat: %w", err)
	}
	return reply, nil
}

// InsightReport is the structured analysis produced by Insights.
type InsightReport struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
	Assessment      string   `json:"assessment"`
}

// Insights asks the model for an assessment of the user's full ledger and
// budgets. When the reply is not the requested JSON object the raw text is
// returned as a single insight rather than failing the request.
func (a *Assistant) Insights(ctx context.Context, userID string) (InsightReport, error) {
	if userID == "" {
		return InsightReport{}, fmt.Errorf("Insights: user id is required")
	}

	txs, err := a.reader.Transactions(ctx, ledger.TxFilter{UserID: userID})
	if err != nil {
		return InsightReport{}, fmt.Errorf("Insights: read ledger: %w", err)
	}
	budgets, err := a.reader.Budgets(ctx, userID, 0, 0)
	if err != nil {
		return InsightReport{}, fmt.Errorf("Insights: read budgets: %w", err)
	}
	for i := range budgets {
		budgets[i].CurrentSpent = budgetSpent(txs, budgets[i])
	}

	raw, err := a.llm.Complete(ctx, []llm.Message{
		llm.User(insightsPrompt(txs, budgets)),
	})
	if err != nil {
		return InsightReport{}, fmt.Errorf("Insights: %w", err)
	}

	var report InsightReport
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &report); err == nil {
		return report, nil
	}
	return InsightReport{Insights: []string{raw}, Assessment: raw}, nil
}

// budgetSpent sums the expense amounts consuming b out of the already-fetched
// ledger: expense transactions inside the budget's month, matched by category
// id when the budget carries one and by name otherwise.
func budgetSpent(txs []domain.Transaction, b domain.Budget) float64 {
	from := time.Date(b.Year, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var spent float64
	for _, t := range txs {
		if t.Type != domain.Expense {
			continue
		}
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		if b.CategoryID != "" {
			if t.CategoryID != b.CategoryID {
				continue
			}
		} else if t.CategoryName != b.CategoryName {
			continue
		}
		spent += t.Amount
	}
	return spent
}
