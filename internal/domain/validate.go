package domain

import (
	"fmt"
	"strings"
	"time"
)

// CandidateResult is the outcome of validating one extractor candidate at the
// write boundary: either a normalized Transaction ready to persist, or a
// rejection with the reason.
type CandidateResult struct {
	Tx       Transaction
	Rejected bool
	Reason   string
}

func reject(format string, args ...interface{}) CandidateResult {
	return CandidateResult{Rejected: true, Reason: fmt.Sprintf(format, args...)}
}

// ValidateCandidate checks a candidate against the ledger invariants and
// normalizes it into a Transaction owned by userID. Absent type, payment mode
// and date take the documented defaults (expense, upi, today); a missing
// description or non-positive amount is a rejection, never a silent fix-up.
func ValidateCandidate(userID string, c Candidate, today time.Time) CandidateResult {
	if userID == "" {
		return reject("user id is required")
	}
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		return reject("description is required")
	}
	if c.Amount <= 0 {
		return reject("amount must be positive, got %v", c.Amount)
	}

	txType := TxType(strings.ToLower(strings.TrimSpace(c.Type)))
	if txType == "" {
		txType = Expense
	}
	if !txType.Valid() {
		return reject("unknown transaction type %q", c.Type)
	}

	mode := PaymentMode(strings.ToLower(strings.TrimSpace(c.PaymentMode)))
	if mode == "" {
		mode = UPI
	}
	if !mode.Valid() {
		return reject("unknown payment mode %q", c.PaymentMode)
	}

	date := today
	if s := strings.TrimSpace(c.Date); s != "" {
		parsed, err := time.Parse(DateFormat, s)
		if err != nil {
			return reject("invalid date %q", c.Date)
		}
		date = parsed
	}

	return CandidateResult{Tx: Transaction{
		UserID:       userID,
		Date:         date,
		Amount:       c.Amount,
		Type:         txType,
		Description:  desc,
		CategoryName: strings.TrimSpace(c.CategoryName),
		PaymentMode:  mode,
		Notes:        strings.TrimSpace(c.Notes),
	}}
}
