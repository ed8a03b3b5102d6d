// Package memory is an in-process ledger.Store. It backs tests and the
// default zero-configuration backend; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/akashgupta/spendlens/internal/domain"
	"github.com/akashgupta/spendlens/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	categories   map[string]domain.Category
	budgets      map[string]domain.Budget
	tags         map[string]domain.Tag
	txTags       map[string][]string // transaction id -> tag ids
}

func New() *Store {
	return &Store{
		transactions: make(map[string]domain.Transaction),
		categories:   make(map[string]domain.Category),
		budgets:      make(map[string]domain.Budget),
		tags:         make(map[string]domain.Tag),
		txTags:       make(map[string][]string),
	}
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) Transactions(ctx context.Context, f ledger.TxFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, t := range s.transactions {
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.Date.Before(f.To) {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			if f.DateDesc {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("TransactionByID: %q not found", id)
	}
	for _, tagID := range s.txTags[id] {
		if tag, ok := s.tags[tagID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	return t, nil
}

func (s *Store) Categories(ctx context.Context, userID string, t domain.TxType) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	for _, c := range s.categories {
		if c.UserID != userID {
			continue
		}
		if t != "" && c.Type != t {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Budgets(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Budget
	for _, b := range s.budgets {
		if b.UserID != userID {
			continue
		}
		if month != 0 && b.Month != month {
			continue
		}
		if year != 0 && b.Year != year {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Tags(ctx context.Context, userID string) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Tag
	for _, t := range s.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %q not found", tx.ID)
	}
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.transactions, id)
	delete(s.txTags, id)
	return nil
}

func (s *Store) AttachTags(ctx context.Context, txID string, tagIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range tagIDs {
		if _, ok := s.tags[id]; !ok {
			return fmt.Errorf("AttachTags: tag %q not found", id)
		}
	}

	// A transaction's tags form a set; re-attaching is a no-op.
	attached := make(map[string]bool, len(s.txTags[txID]))
	for _, id := range s.txTags[txID] {
		attached[id] = true
	}
	for _, id := range tagIDs {
		if attached[id] {
			continue
		}
		attached[id] = true
		s.txTags[txID] = append(s.txTags[txID], id)
	}
	return nil
}

func (s *Store) ReplaceTags(ctx context.Context, txID string, tagIDs []string) error {
	s.mu.Lock()
	s.txTags[txID] = nil
	s.mu.Unlock()
	if len(tagIDs) == 0 {
		return nil
	}
	return s.AttachTags(ctx, txID, tagIDs)
}

func (s *Store) InsertCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) InsertBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) InsertTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tags[t.ID] = t
	return t, nil
}

func (s *Store) Close() error { return nil }
