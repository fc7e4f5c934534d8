// Package transactions merges incomes and expenses into one transaction
// stream and filters, sorts and summarizes it.
package transactions

import (
	"fmt"
	"time"

	"housebudget/internal/core"
)

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
	// TypeAll matches both kinds when used in a Filter.
	TypeAll Type = "all"
)

type Type string

// ParseType accepts "", "all", "income" and "expense".
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case "", TypeAll, TypeIncome, TypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q", s)
	}
}

// Transaction is the common shape of an income or an expense.
type Transaction struct {
	ID                 string            `json:"id"`
	Type               Type              `json:"type"`
	Amount             core.Money        `json:"amount"`
	CategoryOrSource   string            `json:"categoryOrSource"`
	CategoryOrSourceID string            `json:"categoryOrSourceId"`
	MemberID           string            `json:"userId"`
	MemberName         string            `json:"userName"`
	Date               core.Date         `json:"date"`
	Notes              string            `json:"notes,omitempty"`
	NeedsOrWants       core.NeedsOrWants `json:"needsOrWants,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// Combine maps incomes then expenses, each in input order, into transactions.
func Combine(incomes []core.Income, expenses []core.Expense) []Transaction {
	out := make([]Transaction, 0, len(incomes)+len(expenses))
	for _, i := range incomes {
		out = append(out, Transaction{
			ID:                 i.ID,
			Type:               TypeIncome,
			Amount:             i.Amount,
			CategoryOrSource:   i.SourceName,
			CategoryOrSourceID: i.SourceID,
			MemberID:           i.MemberID,
			MemberName:         i.MemberName,
			Date:               i.Date,
			Notes:              i.Notes,
			CreatedAt:          i.CreatedAt,
		})
	}
	for _, e := range expenses {
		out = append(out, Transaction{
			ID:                 e.ID,
			Type:               TypeExpense,
			Amount:             e.Amount,
			CategoryOrSource:   e.CategoryName,
			CategoryOrSourceID: e.CategoryID,
			MemberID:           e.MemberID,
			MemberName:         e.MemberName,
			Date:               e.Date,
			Notes:              e.Notes,
			NeedsOrWants:       e.NeedsOrWants,
			CreatedAt:          e.CreatedAt,
		})
	}
	return out
}
