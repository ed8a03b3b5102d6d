// Package ledger defines the boundary to the external transaction store. The
// extraction pipeline and the aggregation engine only ever see these
// interfaces; concrete stores live under internal/store.
package ledger

import (
	"context"
	"time"

	"github.com/akashgupta/spendlens/internal/domain"
)

// TxFilter narrows a transaction read. Zero values mean "no constraint".
// From/To form a half-open interval [From, To) on the calendar date.
type TxFilter struct {
	UserID     string
	Type       domain.TxType
	From       time.Time
	To         time.Time
	CategoryID string

	// DateDesc orders by date descending (most recent first) instead of
	// the default ascending order.
	DateDesc bool

	// Limit caps the number of returned rows when > 0.
	Limit int
}

// Reader is the sole read path for the pipeline and the aggregation engine.
// Implementations never mutate.
type Reader interface {
	Transactions(ctx context.Context, f TxFilter) ([]domain.Transaction, error)
	TransactionByID(ctx context.Context, id string) (domain.Transaction, error)
	// Categories lists a user's categories, optionally narrowed by type
	// (empty type means both), ordered by name.
	Categories(ctx context.Context, userID string, t domain.TxType) ([]domain.Category, error)
	// Budgets lists budget rows for the user; month/year of 0 mean "any".
	Budgets(ctx context.Context, userID string, month, year int) ([]domain.Budget, error)
	Tags(ctx context.Context, userID string) ([]domain.Tag, error)
}

// Writer is the write path used outside the extraction/aggregation core.
type Writer interface {
	// InsertTransaction persists tx and returns it with the store-assigned ID.
	InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// AttachTags adds tag references to a transaction. Failure here never
	// rolls back the transaction itself.
	AttachTags(ctx context.Context, txID string, tagIDs []string) error
	// ReplaceTags swaps the full tag set of a transaction.
	ReplaceTags(ctx context.Context, txID string, tagIDs []string) error

	InsertCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	InsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error)
	InsertTag(ctx context.Context, t domain.Tag) (domain.Tag, error)
}

// Store is a full ledger backend.
type Store interface {
	Reader
	Writer
	Close() error
}
