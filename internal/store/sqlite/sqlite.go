// Package sqlite is the embedded-database ledger.Store, backed by the pure-Go
// sqlite driver with schema managed by embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ ledger.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at dbPath and applies
// pending migrations.
func Open(dbPath string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const txColumns = "id, user_id, date, amount, type, description, category_id, category_name, payment_mode, notes, created_at"

func (s *Store) Transactions(ctx context.Context, f ledger.TxFilter) ([]domain.Transaction, error) {
	q := "SELECT " + txColumns + " FROM transactions"
	var conds []string
	var args []interface{}

	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.Format(domain.DateFormat))
	}
	if !f.To.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, f.To.Format(domain.DateFormat))
	}
	if f.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.DateDesc {
		q += " ORDER BY date DESC, created_at DESC"
	} else {
		q += " ORDER BY date, created_at"
	}
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate transactions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(r rowScanner) (domain.Transaction, error) {
	var (
		tx                        domain.Transaction
		dateStr, createdStr       string
		txType, mode              string
		catID, catName, notesText sql.NullString
	)
	if err := r.Scan(&tx.ID, &tx.UserID, &dateStr, &tx.Amount, &txType, &tx.Description,
		&catID, &catName, &mode, &notesText, &createdStr); err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: scan transaction: %w", err)
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: bad stored date %q: %w", dateStr, err)
	}
	tx.Date = date
	tx.Type = domain.TxType(txType)
	tx.PaymentMode = domain.PaymentMode(mode)
	tx.CategoryID = catID.String
	tx.CategoryName = catName.String
	tx.Notes = notesText.String
	if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
		tx.CreatedAt = created
	}
	return tx, nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+txColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: transaction %q: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name
		FROM tags t
		JOIN transaction_tags tt ON tt.tag_id = t.id
		WHERE tt.transaction_id = ?
		ORDER BY t.name`, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: query transaction tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
			return domain.Transaction{}, fmt.Errorf("sqlite: scan tag: %w", err)
		}
		tx.Tags = append(tx.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: iterate tags: %w", err)
	}
	return tx, nil
}

func (s *Store) Categories(ctx context.Context, userID string, t domain.TxType) ([]domain.Category, error) {
	q := "SELECT id, user_id, name, type FROM categories WHERE user_id = ?"
	args := []interface{}{userID}
	if t != "" {
		q += " AND type = ?"
		args = append(args, string(t))
	}
	q += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var catType string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &catType); err != nil {
			return nil, fmt.Errorf("sqlite: scan category: %w", err)
		}
		c.Type = domain.TxType(catType)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Budgets(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	q := "SELECT id, user_id, category_id, category_name, month, year, monthly_limit, icon FROM budgets WHERE user_id = ?"
	args := []interface{}{userID}
	if month != 0 {
		q += " AND month = ?"
		args = append(args, month)
	}
	if year != 0 {
		q += " AND year = ?"
		args = append(args, year)
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query budgets: %w", err)
	}
	defer rows.Close()

	var out []domain.Budget
	for rows.Next() {
		var b domain.Budget
		var catID, catName, icon sql.NullString
		if err := rows.Scan(&b.ID, &b.UserID, &catID, &catName, &b.Month, &b.Year, &b.MonthlyLimit, &icon); err != nil {
			return nil, fmt.Errorf("sqlite: scan budget: %w", err)
		}
		b.CategoryID = catID.String
		b.CategoryName = catName.String
		b.Icon = icon.String
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Tags(ctx context.Context, userID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query tags: %w", err)
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, date, amount, type, description, category_id, category_name, payment_mode, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Date.Format(domain.DateFormat), tx.Amount, string(tx.Type), tx.Description,
		nullStr(tx.CategoryID), nullStr(tx.CategoryName), string(tx.PaymentMode), nullStr(tx.Notes),
		tx.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: insert transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, amount = ?, type = ?, description = ?, category_id = ?, category_name = ?, payment_mode = ?, notes = ?
		WHERE id = ?`,
		tx.Date.Format(domain.DateFormat), tx.Amount, string(tx.Type), tx.Description,
		nullStr(tx.CategoryID), nullStr(tx.CategoryName), string(tx.PaymentMode), nullStr(tx.Notes), tx.ID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("sqlite: update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Transaction{}, fmt.Errorf("sqlite: update transaction: %q not found", tx.ID)
	}
	return s.TransactionByID(ctx, tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	// The join rows go first; the schema cascades but older databases may
	// have foreign keys disabled.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transaction_tags WHERE transaction_id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete transaction tags: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete transaction: %w", err)
	}
	return nil
}

func (s *Store) AttachTags(ctx context.Context, txID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)", txID, tagID); err != nil {
			return fmt.Errorf("sqlite: attach tag %q: %w", tagID, err)
		}
	}
	return nil
}

func (s *Store) ReplaceTags(ctx context.Context, txID string, tagIDs []string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transaction_tags WHERE transaction_id = ?", txID); err != nil {
		return fmt.Errorf("sqlite: clear tags: %w", err)
	}
	return s.AttachTags(ctx, txID, tagIDs)
}

func (s *Store) InsertCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, type) VALUES (?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, string(c.Type))
	if err != nil {
		return domain.Category{}, fmt.Errorf("sqlite: insert category: %w", err)
	}
	return c, nil
}

func (s *Store) InsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, category_name, month, year, monthly_limit, icon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, nullStr(b.CategoryID), nullStr(b.CategoryName), b.Month, b.Year, b.MonthlyLimit, nullStr(b.Icon))
	if err != nil {
		return domain.Budget{}, fmt.Errorf("sqlite: insert budget: %w", err)
	}
	return b, nil
}

func (s *Store) InsertTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, user_id, name) VALUES (?, ?, ?)", t.ID, t.UserID, t.Name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("sqlite: insert tag: %w", err)
	}
	return t, nil
}
