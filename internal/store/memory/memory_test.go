package memory

import (
	"context"
	"testing"
	"time"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

func date(s string) time.Time {
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New()

	in := domain.Transaction{
		UserID:       "u1",
		Date:         date("2025-06-10"),
		Amount:       1500,
		Type:         domain.Expense,
		Description:  "Groceries run",
		CategoryName: "Groceries",
		PaymentMode:  domain.UPI,
		Notes:        "weekly",
	}
	created, err := st.InsertTransaction(ctx, in)
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned id")
	}

	got, err := st.TransactionByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if got.Amount != in.Amount || got.Type != in.Type || got.Description != in.Description {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Date.Equal(in.Date) {
		t.Errorf("Date = %v, want %v", got.Date, in.Date)
	}
}

func TestTransactionsFilter(t *testing.T) {
	ctx := context.Background()
	st := New()

	rows := []domain.Transaction{
		{UserID: "u1", Date: date("2025-06-01"), Amount: 100, Type: domain.Expense, Description: "a"},
		{UserID: "u1", Date: date("2025-06-15"), Amount: 200, Type: domain.Income, Description: "b"},
		{UserID: "u1", Date: date("2025-06-30"), Amount: 300, Type: domain.Expense, Description: "c"},
		{UserID: "u1", Date: date("2025-07-01"), Amount: 400, Type: domain.Expense, Description: "d"},
		{UserID: "u2", Date: date("2025-06-10"), Amount: 500, Type: domain.Expense, Description: "e"},
	}
	for _, r := range rows {
		if _, err := st.InsertTransaction(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	t.Run("half-open month window", func(t *testing.T) {
		got, err := st.Transactions(ctx, ledger.TxFilter{
			UserID: "u1",
			From:   date("2025-06-01"),
			To:     date("2025-07-01"),
		})
		if err != nil {
			t.Fatalf("Transactions: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(got))
		}
		// June 30 is in, July 1 is out.
		for _, tx := range got {
			if tx.Description == "d" {
				t.Error("To bound should be exclusive")
			}
		}
	})

	t.Run("type filter", func(t *testing.T) {
		got, err := st.Transactions(ctx, ledger.TxFilter{UserID: "u1", Type: domain.Income})
		if err != nil {
			t.Fatalf("Transactions: %v", err)
		}
		if len(got) != 1 || got[0].Description != "b" {
			t.Errorf("unexpected rows: %+v", got)
		}
	})

	t.Run("descending with limit", func(t *testing.T) {
		got, err := st.Transactions(ctx, ledger.TxFilter{UserID: "u1", DateDesc: true, Limit: 2})
		if err != nil {
			t.Fatalf("Transactions: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(got))
		}
		if got[0].Description != "d" || got[1].Description != "c" {
			t.Errorf("unexpected order: %q then %q", got[0].Description, got[1].Description)
		}
	})

	t.Run("user isolation", func(t *testing.T) {
		got, err := st.Transactions(ctx, ledger.TxFilter{UserID: "u2"})
		if err != nil {
			t.Fatalf("Transactions: %v", err)
		}
		if len(got) != 1 || got[0].Description != "e" {
			t.Errorf("unexpected rows: %+v", got)
		}
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := New()

	created, err := st.InsertTransaction(ctx, domain.Transaction{
		UserID: "u1", Date: date("2025-06-10"), Amount: 100, Type: domain.Expense, Description: "before",
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	created.Description = "after"
	created.Amount = 250
	if _, err := st.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, err := st.TransactionByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if got.Description != "after" || got.Amount != 250 {
		t.Errorf("update not applied: %+v", got)
	}

	if _, err := st.UpdateTransaction(ctx, domain.Transaction{ID: "missing"}); err == nil {
		t.Error("expected error updating an unknown transaction")
	}

	if err := st.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := st.TransactionByID(ctx, created.ID); err == nil {
		t.Error("expected lookup failure after delete")
	}
}

func TestTagsAttachAndReplace(t *testing.T) {
	ctx := context.Background()
	st := New()

	work, err := st.InsertTag(ctx, domain.Tag{UserID: "u1", Name: "work"})
	if err != nil {
		t.Fatalf("InsertTag: %v", err)
	}
	travel, err := st.InsertTag(ctx, domain.Tag{UserID: "u1", Name: "travel"})
	if err != nil {
		t.Fatalf("InsertTag: %v", err)
	}

	tx, err := st.InsertTransaction(ctx, domain.Transaction{
		UserID: "u1", Date: date("2025-06-10"), Amount: 100, Type: domain.Expense, Description: "cab",
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	if err := st.AttachTags(ctx, tx.ID, []string{work.ID}); err != nil {
		t.Fatalf("AttachTags: %v", err)
	}
	if err := st.AttachTags(ctx, tx.ID, []string{"nope"}); err == nil {
		t.Error("expected error attaching an unknown tag")
	}

	got, err := st.TransactionByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "work" {
		t.Errorf("unexpected tags: %+v", got.Tags)
	}

	if err := st.AttachTags(ctx, tx.ID, []string{work.ID, work.ID}); err != nil {
		t.Fatalf("AttachTags: %v", err)
	}
	got, err = st.TransactionByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if len(got.Tags) != 1 {
		t.Errorf("re-attaching must not duplicate, got %d tags: %+v", len(got.Tags), got.Tags)
	}

	if err := st.ReplaceTags(ctx, tx.ID, []string{travel.ID}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}
	got, err = st.TransactionByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "travel" {
		t.Errorf("unexpected tags after replace: %+v", got.Tags)
	}
}

func TestCategoriesAndBudgets(t *testing.T) {
	ctx := context.Background()
	st := New()

	if _, err := st.InsertCategory(ctx, domain.Category{UserID: "u1", Name: "Rent", Type: domain.Expense}); err != nil {
		t.Fatalf("InsertCategory: %v", err)
	}
	if _, err := st.InsertCategory(ctx, domain.Category{UserID: "u1", Name: "Salary", Type: domain.Income}); err != nil {
		t.Fatalf("InsertCategory: %v", err)
	}

	expense, err := st.Categories(ctx, "u1", domain.Expense)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(expense) != 1 || expense[0].Name != "Rent" {
		t.Errorf("unexpected expense categories: %+v", expense)
	}
	all, err := st.Categories(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 categories, got %d", len(all))
	}

	if _, err := st.InsertBudget(ctx, domain.Budget{UserID: "u1", CategoryName: "Rent", Month: 6, Year: 2025, MonthlyLimit: 15000}); err != nil {
		t.Fatalf("InsertBudget: %v", err)
	}
	if _, err := st.InsertBudget(ctx, domain.Budget{UserID: "u1", CategoryName: "Rent", Month: 7, Year: 2025, MonthlyLimit: 15000}); err != nil {
		t.Fatalf("InsertBudget: %v", err)
	}

	june, err := st.Budgets(ctx, "u1", 6, 2025)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(june) != 1 || june[0].Month != 6 {
		t.Errorf("unexpected June budgets: %+v", june)
	}
	any, err := st.Budgets(ctx, "u1", 0, 0)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(any) != 2 {
		t.Errorf("expected 2 budgets for the any-period query, got %d", len(any))
	}
}
