package ledger

import (
	"strings"

	"housebudget/internal/core"
)

// IncomeInput describes a new income. ID is optional; an empty ID is filled
// from Env.NewID.
type IncomeInput struct {
	ID        string     `json:"-"`
	Amount    core.Money `json:"amount"`
	SourceID  string     `json:"sourceId"`
	MemberID  string     `json:"userId"`
	Date      core.Date  `json:"date"`
	Notes     string     `json:"notes"`
	CreatedBy string     `json:"createdBy"`
}

// IncomePatch lists the income fields to change; nil fields are kept.
type IncomePatch struct {
	Amount   *core.Money `json:"amount"`
	SourceID *string     `json:"sourceId"`
	MemberID *string     `json:"userId"`
	Date     *core.Date  `json:"date"`
	Notes    *string     `json:"notes"`
}

type ExpenseInput struct {
	ID           string            `json:"-"`
	Amount       core.Money        `json:"amount"`
	CategoryID   string            `json:"categoryId"`
	NeedsOrWants core.NeedsOrWants `json:"needsOrWants"`
	MemberID     string            `json:"userId"`
	Date         core.Date         `json:"date"`
	Notes        string            `json:"notes"`
	CreatedBy    string            `json:"createdBy"`
}

type ExpensePatch struct {
	Amount       *core.Money        `json:"amount"`
	CategoryID   *string            `json:"categoryId"`
	NeedsOrWants *core.NeedsOrWants `json:"needsOrWants"`
	MemberID     *string            `json:"userId"`
	Date         *core.Date         `json:"date"`
	Notes        *string            `json:"notes"`
}

func incomeID(i core.Income) string   { return i.ID }
func expenseID(e core.Expense) string { return e.ID }

// AddIncome records an income. The source and member names are copied onto
// the income as they are now.
func AddIncome(l Ledger, env Env, in IncomeInput) (Ledger, error) {
	inc := core.Income{
		Amount:    in.Amount,
		SourceID:  in.SourceID,
		MemberID:  in.MemberID,
		Date:      in.Date,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedBy: in.CreatedBy,
	}
	if err := inc.Validate(); err != nil {
		return l, invalid(err)
	}
	src, err := l.source(in.SourceID)
	if err != nil {
		return l, err
	}
	mem, err := l.member(in.MemberID)
	if err != nil {
		return l, err
	}
	inc.ID = env.id(in.ID)
	inc.SourceName = src.Name
	inc.MemberName = mem.Name
	inc.CreatedAt = env.now()
	if inc.CreatedBy == "" {
		inc.CreatedBy = mem.ID
	}

	out := l
	out.Incomes = appended(l.Incomes, inc)
	return out, nil
}

// UpdateIncome applies p to the income with the given id. Changing the source
// or member refreshes the matching name snapshot.
func UpdateIncome(l Ledger, id string, p IncomePatch) (Ledger, error) {
	i := indexByID(l.Incomes, id, incomeID)
	if i < 0 {
		return l, notFound("income", id)
	}
	inc := l.Incomes[i]
	if p.Amount != nil {
		inc.Amount = *p.Amount
	}
	if p.Date != nil {
		inc.Date = *p.Date
	}
	if p.Notes != nil {
		inc.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.SourceID != nil && *p.SourceID != inc.SourceID {
		src, err := l.source(*p.SourceID)
		if err != nil {
			return l, err
		}
		inc.SourceID, inc.SourceName = src.ID, src.Name
	}
	if p.MemberID != nil && *p.MemberID != inc.MemberID {
		mem, err := l.member(*p.MemberID)
		if err != nil {
			return l, err
		}
		inc.MemberID, inc.MemberName = mem.ID, mem.Name
	}
	if err := inc.Validate(); err != nil {
		return l, invalid(err)
	}

	out := l
	out.Incomes = replaced(l.Incomes, i, inc)
	return out, nil
}

func DeleteIncome(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.Incomes, id, incomeID)
	if i < 0 {
		return l, notFound("income", id)
	}
	out := l
	out.Incomes = removed(l.Incomes, i)
	return out, nil
}

// AddExpense records an expense against a category template.
func AddExpense(l Ledger, env Env, in ExpenseInput) (Ledger, error) {
	exp := core.Expense{
		Amount:       in.Amount,
		CategoryID:   in.CategoryID,
		NeedsOrWants: in.NeedsOrWants,
		MemberID:     in.MemberID,
		Date:         in.Date,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedBy:    in.CreatedBy,
	}
	if err := exp.Validate(); err != nil {
		return l, invalid(err)
	}
	cat, err := l.category(in.CategoryID)
	if err != nil {
		return l, err
	}
	mem, err := l.member(in.MemberID)
	if err != nil {
		return l, err
	}
	exp.ID = env.id(in.ID)
	exp.CategoryName = cat.Name
	exp.MemberName = mem.Name
	exp.CreatedAt = env.now()
	if exp.CreatedBy == "" {
		exp.CreatedBy = mem.ID
	}

	out := l
	out.Expenses = appended(l.Expenses, exp)
	return out, nil
}

func UpdateExpense(l Ledger, id string, p ExpensePatch) (Ledger, error) {
	i := indexByID(l.Expenses, id, expenseID)
	if i < 0 {
		return l, notFound("expense", id)
	}
	exp := l.Expenses[i]
	if p.Amount != nil {
		exp.Amount = *p.Amount
	}
	if p.NeedsOrWants != nil {
		exp.NeedsOrWants = *p.NeedsOrWants
	}
	if p.Date != nil {
		exp.Date = *p.Date
	}
	if p.Notes != nil {
		exp.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.CategoryID != nil && *p.CategoryID != exp.CategoryID {
		cat, err := l.category(*p.CategoryID)
		if err != nil {
			return l, err
		}
		exp.CategoryID, exp.CategoryName = cat.ID, cat.Name
	}
	if p.MemberID != nil && *p.MemberID != exp.MemberID {
		mem, err := l.member(*p.MemberID)
		if err != nil {
			return l, err
		}
		exp.MemberID, exp.MemberName = mem.ID, mem.Name
	}
	if err := exp.Validate(); err != nil {
		return l, invalid(err)
	}

	out := l
	out.Expenses = replaced(l.Expenses, i, exp)
	return out, nil
}

func DeleteExpense(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.Expenses, id, expenseID)
	if i < 0 {
		return l, notFound("expense", id)
	}
	out := l
	out.Expenses = removed(l.Expenses, i)
	return out, nil
}
