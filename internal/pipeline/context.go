package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// Context window sizes for the two model-facing flows. Chat gets a wider
// window than extraction because it answers questions about history.
const (
	ChatContextLimit   = 50
	ReviewContextLimit = 20
)

// NoDataMarker is the context block for a user with an empty ledger. It is a
// distinct marker rather than the empty string so the system prompt can tell
// "no data" apart from "could not read data".
const NoDataMarker = "=== NO TRANSACTION DATA AVAILABLE ==="

// ContextBuilder renders a user's recent ledger into the plain-text block fed
// to the model as grounding context.
type ContextBuilder struct {
	reader ledger.Reader
	log    zerolog.Logger
}

func NewContextBuilder(reader ledger.Reader, log zerolog.Logger) *ContextBuilder {
	return &ContextBuilder{reader: reader, log: log}
}

// Build returns the context block for userID, covering at most limit recent
// transactions. A read failure degrades to an empty block so the caller can
// still serve the request without history.
func (b *ContextBuilder) Build(ctx context.Context, userID string, limit int) string {
	txs, err := b.reader.Transactions(ctx, ledger.TxFilter{
		UserID:   userID,
		DateDesc: true,
		Limit:    limit,
	})
	if err != nil {
		b.log.Warn().Err(err).Str("user_id", userID).Msg("Context read failed, continuing without history")
		return ""
	}
	if len(txs) == 0 {
		return NoDataMarker
	}

	var income, expense float64
	for _, t := range txs {
		if t.Type == domain.Income {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}

	var sb strings.Builder
	sb.WriteString("=== USER'S FINANCIAL SUMMARY ===\n")
	fmt.Fprintf(&sb, "Total Income: %s\n", rupees(income))
	fmt.Fprintf(&sb, "Total Expenses: %s\n", rupees(expense))
	fmt.Fprintf(&sb, "Current Balance: %s\n\n", rupees(income-expense))

	fmt.Fprintf(&sb, "=== ALL TRANSACTIONS (%d total) ===\n", len(txs))
	for i, t := range txs {
		category := t.CategoryName
		if category == "" {
			category = "Uncategorized"
		}
		payment := string(t.PaymentMode)
		if payment == "" {
			payment = "N/A"
		}
		fmt.Fprintf(&sb, "%d. %s - %s - %s (%s) - Category: %s - Payment: %s\n",
			i+1, t.Date.Format(domain.DateFormat), t.Description, rupees(t.Amount), t.Type, category, payment)
	}

	if top := topExpenseCategories(txs, 10); len(top) > 0 {
		sb.WriteString("\nSpending by Category:\n")
		for _, c := range top {
			fmt.Fprintf(&sb, "- %s: %s\n", c.name, rupees(c.amount))
		}
	}
	return sb.String()
}

type categoryTotal struct {
	name   string
	amount float64
}

// topExpenseCategories sums expenses by category name and returns the n
// largest, amount descending with name as the tie-break.
func topExpenseCategories(txs []domain.Transaction, n int) []categoryTotal {
	totals := make(map[string]float64)
	for _, t := range txs {
		if t.Type != domain.Expense {
			continue
		}
		name := t.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		totals[name] += t.Amount
	}

	out := make([]categoryTotal, 0, len(totals))
	for name, amount := range totals {
		out = append(out, categoryTotal{name: name, amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].amount != out[j].amount {
			return out[i].amount > out[j].amount
		}
		return out[i].name < out[j].name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// rupees formats an amount as ₹ with digit grouping, e.g. ₹12,500.5.
func rupees(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)

	intPart, fracPart := s, ""
	if idx := strings.Index(s, "."); idx != -1 {
		intPart, fracPart = s[:idx], s[idx:]
	}

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}

	out := "₹" + sb.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
