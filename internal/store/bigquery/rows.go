package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/akashgupta/spendlens/internal/domain"
)

type transactionRow struct {
	ID           string              `bigquery:"transaction_id"`
	UserID       string              `bigquery:"user_id"`
	Date         civil.Date          `bigquery:"transaction_date"`
	Amount       float64             `bigquery:"amount"`
	Type         string              `bigquery:"transaction_type"`
	Description  string              `bigquery:"description"`
	CategoryID   bigquery.NullString `bigquery:"category_id"`
	CategoryName bigquery.NullString `bigquery:"category_name"`
	PaymentMode  string              `bigquery:"payment_mode"`
	Notes        bigquery.NullString `bigquery:"notes"`
	CreatedTS    time.Time           `bigquery:"created_ts"`
}

type categoryRow struct {
	ID     string `bigquery:"category_id"`
	UserID string `bigquery:"user_id"`
	Name   string `bigquery:"name"`
	Type   string `bigquery:"category_type"`
}

type budgetRow struct {
	ID           string              `bigquery:"budget_id"`
	UserID       string              `bigquery:"user_id"`
	CategoryID   bigquery.NullString `bigquery:"category_id"`
	CategoryName bigquery.NullString `bigquery:"category_name"`
	Month        int64               `bigquery:"month"`
	Year         int64               `bigquery:"year"`
	MonthlyLimit float64             `bigquery:"monthly_limit"`
	Icon         bigquery.NullString `bigquery:"icon"`
	CreatedTS    time.Time           `bigquery:"created_ts"`
}

type tagRow struct {
	ID     string `bigquery:"tag_id"`
	UserID string `bigquery:"user_id"`
	Name   string `bigquery:"name"`
}

type transactionTagRow struct {
	TransactionID string `bigquery:"transaction_id"`
	TagID         string `bigquery:"tag_id"`
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func rowFromTransaction(tx domain.Transaction) *transactionRow {
	return &transactionRow{
		ID:           tx.ID,
		UserID:       tx.UserID,
		Date:         civil.DateOf(tx.Date),
		Amount:       tx.Amount,
		Type:         string(tx.Type),
		Description:  tx.Description,
		CategoryID:   nullString(tx.CategoryID),
		CategoryName: nullString(tx.CategoryName),
		PaymentMode:  string(tx.PaymentMode),
		Notes:        nullString(tx.Notes),
		CreatedTS:    tx.CreatedAt,
	}
}

func (r *transactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:           r.ID,
		UserID:       r.UserID,
		Date:         r.Date.In(time.UTC),
		Amount:       r.Amount,
		Type:         domain.TxType(r.Type),
		Description:  r.Description,
		CategoryID:   r.CategoryID.StringVal,
		CategoryName: r.CategoryName.StringVal,
		PaymentMode:  domain.PaymentMode(r.PaymentMode),
		Notes:        r.Notes.StringVal,
		CreatedAt:    r.CreatedTS,
	}
}

func (r *budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:           r.ID,
		UserID:       r.UserID,
		CategoryID:   r.CategoryID.StringVal,
		CategoryName: r.CategoryName.StringVal,
		Month:        int(r.Month),
		Year:         int(r.Year),
		MonthlyLimit: r.MonthlyLimit,
		Icon:         r.Icon.StringVal,
	}
}
