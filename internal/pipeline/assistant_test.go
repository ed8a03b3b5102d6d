package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
	"github.com/akashgupta/spendlens/internal/llm"
)

type fakeCompleter struct {
	CompleteFunc func(ctx context.Context, messages []llm.Message) (string, error)
}

func (c *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return c.CompleteFunc(ctx, messages)
}

func emptyReader() *fakeReader {
	return &fakeReader{
		TransactionsFunc: func(ctx context.Context, f ledger.TxFilter) ([]domain.Transaction, error) {
			return nil, nil
		},
	}
}

func TestExtractMultipleTransactions(t *testing.T) {
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			if len(messages) != 2 || messages[0].Role != llm.RoleSystem {
				t.Fatalf("expected system+user transcript, got %+v", messages)
			}
			if !strings.Contains(messages[1].Content, "100rs to papa") {
				t.Errorf("user prompt missing the raw input: %q", messages[1].Content)
			}
			return `[
				{"description": "Payment to papa", "amount": 100, "type": "expense", "payment_mode": "upi", "date": "2025-06-15"},
				{"description": "EMI Payment", "amount": 2000, "type": "expense", "category_name": "Loan Payment", "date": "2025-06-15"},
				{"description": "Shopping", "amount": 400, "type": "expense", "category_name": "Shopping", "date": "2025-06-15"}
			]`, nil
		},
	}

	a := NewAssistant(emptyReader(), completer, testLogger())
	today := date("2025-06-15")

	got, err := a.Extract(context.Background(), "u1", "100rs to papa and 2000 emi and 400 for shopping", today)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}

	amounts := map[float64]bool{}
	for _, c := range got {
		amounts[c.Amount] = true
		if c.Type != "expense" {
			t.Errorf("candidate %q type = %q, want expense", c.Description, c.Type)
		}
	}
	for _, want := range []float64{100, 2000, 400} {
		if !amounts[want] {
			t.Errorf("missing candidate with amount %v", want)
		}
	}
}

func TestExtractDegradesToEmpty(t *testing.T) {
	t.Run("model failure", func(t *testing.T) {
		completer := &fakeCompleter{
			CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
				return "", fmt.Errorf("model unavailable")
			},
		}
		a := NewAssistant(emptyReader(), completer, testLogger())

		got, err := a.Extract(context.Background(), "u1", "coffee 200", time.Now())
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})

	t.Run("unparseable output", func(t *testing.T) {
		completer := &fakeCompleter{
			CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
				return "I could not find any transactions in that.", nil
			},
		}
		a := NewAssistant(emptyReader(), completer, testLogger())

		got, err := a.Extract(context.Background(), "u1", "hello there", time.Now())
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil result, got %v", got)
		}
	})
}

func TestExtractRejectsBadArguments(t *testing.T) {
	a := NewAssistant(emptyReader(), &fakeCompleter{}, testLogger())

	if _, err := a.Extract(context.Background(), "", "coffee 200", time.Now()); err == nil {
		t.Error("expected error for missing user id")
	}
	if _, err := a.Extract(context.Background(), "u1", "   ", time.Now()); err == nil {
		t.Error("expected error for blank input")
	}
}

func TestChatGroundsSystemMessage(t *testing.T) {
	reader := &fakeReader{
		TransactionsFunc: func(ctx context.Context, f ledger.TxFilter) ([]domain.Transaction, error) {
			return []domain.Transaction{
				{Date: date("2025-06-10"), Description: "Groceries", Amount: 1500, Type: domain.Expense, PaymentMode: domain.UPI},
			}, nil
		},
	}
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			if messages[0].Role != llm.RoleSystem {
				t.Fatalf("first message role = %q, want system", messages[0].Role)
			}
			if !strings.Contains(messages[0].Content, "FULL ACCESS") {
				t.Errorf("system message should claim full access:\n%s", messages[0].Content)
			}
			if !strings.Contains(messages[0].Content, "Groceries") {
				t.Error("system message should embed the transaction history")
			}
			return "You spent ₹1,500 on groceries.", nil
		},
	}

	a := NewAssistant(reader, completer, testLogger())
	reply, err := a.Chat(context.Background(), "u1", []llm.Message{llm.User("how much did I spend?")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply == "" {
		t.Error("expected a non-empty reply")
	}
}

func TestChatWithoutUserDeclinesHistory(t *testing.T) {
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			if !strings.Contains(messages[0].Content, "do not have access") {
				t.Errorf("system message should disclaim history access:\n%s", messages[0].Content)
			}
			return "I need your transaction data for that.", nil
		},
	}

	a := NewAssistant(emptyReader(), completer, testLogger())
	if _, err := a.Chat(context.Background(), "", []llm.Message{llm.User("what did I spend?")}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
}

func TestInsightsParsesReport(t *testing.T) {
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			return "```json\n" + `{
				"insights": ["Most spending is on food"],
				"recommendations": ["Cook at home more"],
				"warnings": [],
				"assessment": "Healthy overall"
			}` + "\n```", nil
		},
	}

	a := NewAssistant(emptyReader(), completer, testLogger())
	report, err := a.Insights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(report.Insights) != 1 || report.Assessment != "Healthy overall" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestInsightsRendersBudgetConsumption(t *testing.T) {
	reader := &fakeReader{
		TransactionsFunc: func(ctx context.Context, f ledger.TxFilter) ([]domain.Transaction, error) {
			return []domain.Transaction{
				{UserID: "u1", Date: date("2025-06-03"), Amount: 1200, Type: domain.Expense, CategoryName: "Food & Dining"},
				{UserID: "u1", Date: date("2025-06-20"), Amount: 2000, Type: domain.Expense, CategoryName: "Food & Dining"},
				// Previous month, must not consume the June budget.
				{UserID: "u1", Date: date("2025-05-30"), Amount: 900, Type: domain.Expense, CategoryName: "Food & Dining"},
			}, nil
		},
		BudgetsFunc: func(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
			return []domain.Budget{
				{UserID: "u1", CategoryName: "Food & Dining", Month: 6, Year: 2025, MonthlyLimit: 5000},
			}, nil
		},
	}

	var prompt string
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			prompt = messages[len(messages)-1].Content
			return `{"insights": [], "recommendations": [], "warnings": [], "assessment": "ok"}`, nil
		},
	}

	a := NewAssistant(reader, completer, testLogger())
	if _, err := a.Insights(context.Background(), "u1"); err != nil {
		t.Fatalf("Insights: %v", err)
	}

	want := "- Food & Dining: ₹3,200/₹5,000 (64.0%) for 2025-06"
	if !strings.Contains(prompt, want) {
		t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
	}
}

func TestBudgetSpentMatchesByCategoryID(t *testing.T) {
	txs := []domain.Transaction{
		{Date: date("2025-06-05"), Amount: 700, Type: domain.Expense, CategoryID: "c1", CategoryName: "Food & Dining"},
		{Date: date("2025-06-06"), Amount: 300, Type: domain.Expense, CategoryID: "c2", CategoryName: "Food & Dining"},
		{Date: date("2025-06-07"), Amount: 100, Type: domain.Income, CategoryID: "c1"},
	}

	b := domain.Budget{CategoryID: "c1", CategoryName: "Food & Dining", Month: 6, Year: 2025}
	if got := budgetSpent(txs, b); got != 700 {
		t.Errorf("budgetSpent = %v, want 700 (id-matched only)", got)
	}
}

func TestInsightsFallsBackToRawText(t *testing.T) {
	raw := "Your spending looks fine, keep an eye on food delivery."
	completer := &fakeCompleter{
		CompleteFunc: func(ctx context.Context, messages []llm.Message) (string, error) {
			return raw, nil
		},
	}

	a := NewAssistant(emptyReader(), completer, testLogger())
	report, err := a.Insights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(report.Insights) != 1 || report.Insights[0] != raw {
		t.Errorf("expected raw text fallback, got %+v", report)
	}
}
