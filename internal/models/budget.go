package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tells income from expense.
type Kind string

const (
	// Income is money coming in ("in" on the wire).
	Income Kind = "in"
	// Expense is money going out ("out" on the wire).
	Expense Kind = "out"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind accepts the wire values as well as "income" and "expense".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "income":
		return Income, nil
	case "out", "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Category groups transactions of one user.
type Category struct {
	ID          int64  `json:"id"`
	OwnerUserID int64  `json:"user_id"`
	Name        string `json:"name"`
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          int64           `json:"id"`
	OwnerUserID int64           `json:"user_id"`
	CategoryID  int64           `json:"category_id"`
	Kind        Kind            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredOn  Date            `json:"date"`
	// CategoryName is a snapshot of the category name taken at the last
	// sync. It is not refreshed when the category is renamed.
	CategoryName string `json:"categoryName"`
}

// Check reports the first field that keeps t from being stored: an unknown
// kind or a missing date.
func (t Transaction) Check() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("transaction %d: unknown type %q", t.ID, t.Kind)
	}
	if t.OccurredOn.IsZero() {
		return fmt.Errorf("transaction %d: missing date", t.ID)
	}
	return nil
}
