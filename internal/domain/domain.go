package domain

import (
	"encoding/json"
	"time"
)

// TxType distinguishes money in from money out. The stored amount is always
// positive; sign is carried by the type, never by the value.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Valid reports whether t is one of the two known transaction types.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// PaymentMode is how a transaction was paid.
type PaymentMode string

const (
	Cash         PaymentMode = "cash"
	Card         PaymentMode = "card"
	UPI          PaymentMode = "upi"
	BankTransfer PaymentMode = "bank_transfer"
)

func (p PaymentMode) Valid() bool {
	switch p {
	case Cash, Card, UPI, BankTransfer:
		return true
	}
	return false
}

// DateFormat is the calendar-date wire format used everywhere in this system.
const DateFormat = "2006-01-02"

// Transaction is one persisted ledger entry, exclusively owned by UserID.
type Transaction struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Date        time.Time `json:"-"`
	Amount      float64   `json:"amount"`
	Type        TxType    `json:"type"`
	Description string    `json:"description"`

	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`

	PaymentMode PaymentMode `json:"payment_mode"`
	Notes       string      `json:"notes,omitempty"`

	Tags []Tag `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Signed returns the amount with its direction applied: positive for income,
// negative for expense.
func (t Transaction) Signed() float64 {
	if t.Type == Income {
		return t.Amount
	}
	return -t.Amount
}

// MarshalJSON renders Date as a plain calendar date with no time component.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(t), t.Date.Format(DateFormat)})
}

// Category groups transactions. Name is unique per user per type.
type Category struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Type   TxType `json:"type"`
}

// Budget is a per-month spending limit for one category. CurrentSpent is
// derived from the ledger at read time and never persisted.
type Budget struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	CategoryID   string  `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	MonthlyLimit float64 `json:"monthly_limit"`
	Icon         string  `json:"icon,omitempty"`

	CurrentSpent float64 `json:"current_spent"`
}

// Tag is a user-defined label attached to transactions via a join relation.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Candidate is an unpersisted transaction proposed by the extractor. Fields
// are kept loosely typed on purpose: the model's output is a best-effort
// structured proposal and is only validated at the write boundary.
type Candidate struct {
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"`
	CategoryName string  `json:"category_name"`
	PaymentMode  string  `json:"payment_mode"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes,omitempty"`
}
