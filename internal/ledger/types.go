package ledger

import (
	"errors"
	"time"
)

var (
	ErrInvalidAmount   = errors.New("ledger: amount must be positive")
	ErrInvalidType     = errors.New("ledger: unknown entry type")
	ErrInvalidDate     = errors.New("ledger: invalid transaction date")
	ErrInvalidCategory = errors.New("ledger: category is required")
)

// EntryType distinguishes money flowing into or out of the treasury.
type EntryType string

const (
	TypeDeposit    EntryType = "deposit"
	TypeWithdrawal EntryType = "withdrawal"
)

// ParseEntryType validates a raw entry type string.
func ParseEntryType(raw string) (EntryType, bool) {
	switch EntryType(raw) {
	case TypeDeposit:
		return TypeDeposit, true
	case TypeWithdrawal:
		return TypeWithdrawal, true
	}
	return "", false
}

// Transaction is an immutable ledger row. Balance is the running balance
// computed when the row was appended; amounts are whole KRW.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Type        EntryType `json:"type"`
	Amount      int64     `json:"amount"`
	Balance     int64     `json:"balance"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// AppendInput carries the caller-supplied fields of a new transaction.
type AppendInput struct {
	Date        time.Time
	Type        EntryType
	Amount      int64
	Category    string
	Description string
	CreatedBy   string
}

// ValidateAppend checks the caller-supplied fields shared by every Service
// implementation.
func ValidateAppend(in AppendInput) error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, ok := ParseEntryType(string(in.Type)); !ok {
		return ErrInvalidType
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	if in.Category == "" {
		return ErrInvalidCategory
	}
	return nil
}

// DateOnly truncates a timestamp to a UTC calendar date. Transactions are
// keyed by the human-chosen date, not the entry instant.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RanksBefore reports whether a is ranked ahead of b under the display
// ordering (date desc, then created_at desc). The first-ranked transaction
// defines the current balance, which keeps "current" stable when entries are
// back-dated.
func RanksBefore(a, b Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
