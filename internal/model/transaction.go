package model

import (
	"github.com/shopspring/decimal"
)

// Kind selects which ledger a transaction belongs to.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// ParseKind converts a user-supplied string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindExpense, KindIncome:
		return Kind(s), true
	}
	return "", false
}

// Status represents the payment state of a persisted transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusCompleted, StatusPending, StatusFailed, StatusRefunded}

// ParseStatus maps a raw value to a Status. Blank or unknown values become
// StatusCompleted.
func ParseStatus(s string) Status {
	for _, st := range Statuses {
		if string(st) == s {
			return st
		}
	}
	return StatusCompleted
}

// TimestampLayout is the canonical persisted timestamp, "YYYY-MM-DD HH:MM:SS".
const TimestampLayout = "2006-01-02 15:04:05"

// Transaction is one stored income or expense record.
type Transaction struct {
	ID            string
	Name          string
	Amount        decimal.Decimal // always > 0
	Category      string
	Timestamp     string // TimestampLayout
	Type          Kind
	Description   *string
	PaymentMethod *string
	PaymentID     *string
	Status        Status
}

// Principal identifies the user a pipeline operation runs on behalf of.
type Principal struct {
	UserID string
}

// Optional returns nil for blank strings and a pointer to s otherwise.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
