// Package aggregate derives numeric summaries from the transaction ledger.
// Every operation is a pure function of the rows read through ledger.Reader;
// nothing here calls the language model or mutates the store. Independent
// reads inside one request run concurrently: there is deliberately no
// cross-query snapshot guarantee, the ledger may move between reads.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

// Engine computes budget consumption, monthly rollups, daily trends and
// category breakdowns for one ledger.
type Engine struct {
	reader ledger.Reader
}

func NewEngine(reader ledger.Reader) *Engine {
	return &Engine{reader: reader}
}

// CategoryShare is one category's slice of a month's expenses.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// MonthlySummary is the month rollup returned by Engine.MonthlySummary.
type MonthlySummary struct {
	Income            float64         `json:"this_month_income"`
	Expense           float64         `json:"this_month_expense"`
	Savings           float64         `json:"savings"`
	SavingsRate       float64         `json:"savings_rate"`
	CategoryBreakdown []CategoryShare `json:"category_expenses"`
	TotalBalance      float64         `json:"total_balance"`
}

// MonthlyPoint is one month of the income/expense/savings trend.
type MonthlyPoint struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Savings float64 `json:"savings"`
}

// DayAmount is one calendar day's expense total.
type DayAmount struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// monthInterval returns the half-open interval [first of month, first of next
// month). December rolls the end bound into January of the next year.
func monthInterval(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// MonthlySummary computes the month's income, expense, savings rate, expense
// breakdown by category, and the all-time balance. The three reads are
// independent and run concurrently.
func (e *Engine) MonthlySummary(ctx context.Context, userID string, month, year int) (MonthlySummary, error) {
	if userID == "" {
		return MonthlySummary{}, fmt.Errorf("MonthlySummary: user id is required")
	}
	from, to := monthInterval(month, year)

	var monthTxs, monthExpenses, allTxs []domain.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthTxs, err = e.reader.Transactions(gctx, ledger.TxFilter{UserID: userID, From: from, To: to})
		return err
	})
	g.Go(func() error {
		var err error
		monthExpenses, err = e.reader.Transactions(gctx, ledger.TxFilter{
			UserID: userID, Type: domain.Expense, From: from, To: to,
		})
		return err
	})
	g.Go(func() error {
		var err error
		allTxs, err = e.reader.Transactions(gctx, ledger.TxFilter{UserID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return MonthlySummary{}, fmt.Errorf("MonthlySummary: %w", err)
	}

	var income, expense float64
	for _, t := range monthTxs {
		if t.Type == domain.Income {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}
	savings := income - expense

	rate := 0.0
	if income > 0 {
		rate = round1(100 * savings / income)
	}

	var balance float64
	for _, t := range allTxs {
		balance += t.Signed()
	}

	return MonthlySummary{
		Income:            income,
		Expense:           expense,
		Savings:           savings,
		SavingsRate:       rate,
		CategoryBreakdown: breakdown(monthExpenses, expense),
		TotalBalance:      balance,
	}, nil
}

// breakdown sums expense amounts by category name, defaulting empty names to
// "Uncategorized". Entries are ordered amount descending, name ascending on
// ties, so the output is stable across runs.
func breakdown(expenses []domain.Transaction, totalExpense float64) []CategoryShare {
	byName := make(map[string]float64)
	for _, t := range expenses {
		name := t.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		byName[name] += t.Amount
	}

	out := make([]CategoryShare, 0, len(byName))
	for name, amount := range byName {
		pct := 0.0
		if totalExpense > 0 {
			pct = round1(100 * amount / totalExpense)
		}
		out = append(out, CategoryShare{Category: name, Amount: amount, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend returns the income/expense/savings rollup for the six months
// ending at now's month, oldest first.
func (e *Engine) MonthlyTrend(ctx context.Context, userID string, now time.Time) ([]MonthlyPoint, error) {
	return e.MonthlyTrendN(ctx, userID, now, 6)
}

// MonthlyTrendN is MonthlyTrend for an arbitrary window of n months.
func (e *Engine) MonthlyTrendN(ctx context.Context, userID string, now time.Time, n int) ([]MonthlyPoint, error) {
	if userID == "" {
		return nil, fmt.Errorf("MonthlyTrend: user id is required")
	}

	points := make([]MonthlyPoint, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		// time.Date normalizes out-of-range months, so current-month minus
		// offset lands in the right year.
		first := time.Date(now.Year(), now.Month()-time.Month(n-1-i), 1, 0, 0, 0, 0, time.UTC)
		idx := i
		g.Go(func() error {
			from, to := monthInterval(int(first.Month()), first.Year())
			txs, err := e.reader.Transactions(gctx, ledger.TxFilter{UserID: userID, From: from, To: to})
			if err != nil {
				return err
			}
			var income, expense float64
			for _, t := range txs {
				if t.Type == domain.Income {
					income += t.Amount
				} else {
					expense += t.Amount
				}
			}
			points[idx] = MonthlyPoint{
				Month:   first.Format("Jan"),
				Income:  income,
				Expense: expense,
				Savings: income - expense,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("MonthlyTrend: %w", err)
	}
	return points, nil
}

// DailyExpenseTrend returns one entry per calendar day of the month, in
// ascending date order, with zero amounts for days without expenses. The
// result always has exactly as many entries as the month has days.
func (e *Engine) DailyExpenseTrend(ctx context.Context, userID string, month, year int) ([]DayAmount, error) {
	if userID == "" {
		return nil, fmt.Errorf("DailyExpenseTrend: user id is required")
	}
	from, to := monthInterval(month, year)

	txs, err := e.reader.Transactions(ctx, ledger.TxFilter{
		UserID: userID, Type: domain.Expense, From: from, To: to,
	})
	if err != nil {
		return nil, fmt.Errorf("DailyExpenseTrend: %w", err)
	}

	byDay := make(map[int]float64)
	for _, t := range txs {
		byDay[t.Date.Day()] += t.Amount
	}

	days := to.AddDate(0, 0, -1).Day()
	out := make([]DayAmount, days)
	for d := 1; d <= days; d++ {
		out[d-1] = DayAmount{
			Date:   time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC).Format(domain.DateFormat),
			Amount: byDay[d],
		}
	}
	return out, nil
}

// BudgetConsumption joins every budget row for the month with its derived
// current_spent: the sum of in-month expense amounts for the budget's
// category, matched by category ID when the budget carries one and by name
// otherwise.
func (e *Engine) BudgetConsumption(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	if userID == "" {
		return nil, fmt.Errorf("BudgetConsumption: user id is required")
	}

	budgets, err := e.reader.Budgets(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("BudgetConsumption: read budgets: %w", err)
	}
	from, to := monthInterval(month, year)

	g, gctx := errgroup.WithContext(ctx)
	for i := range budgets {
		b := &budgets[i]
		g.Go(func() error {
			f := ledger.TxFilter{UserID: userID, Type: domain.Expense, From: from, To: to}
			if b.CategoryID != "" {
				f.CategoryID = b.CategoryID
			}
			txs, err := e.reader.Transactions(gctx, f)
			if err != nil {
				return err
			}
			var spent float64
			for _, t := range txs {
				if b.CategoryID == "" && t.CategoryName != b.CategoryName {
					continue
				}
				spent += t.Amount
			}
			b.CurrentSpent = spent
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("BudgetConsumption: %w", err)
	}
	return budgets, nil
}
