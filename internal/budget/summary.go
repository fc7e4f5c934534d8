package budget

import (
	"housebudget/internal/core"
)

const (
	StatusHealthy Status = "healthy"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// WarningPercent is the share of a category budget at which a warning starts.
const WarningPercent = 80

// Status classifies how much of a category budget has been used.
type Status string

// Summary holds the month-level totals. Derived fields may be negative.
type Summary struct {
	Month               string     `json:"month"`
	TotalIncome         core.Money `json:"totalIncome"`
	TotalBudgeted       core.Money `json:"totalBudgeted"`
	TotalSpent          core.Money `json:"totalSpent"`
	Remaining           core.Money `json:"remaining"`
	NetDisposableIncome core.Money `json:"netDisposableIncome"`
	SavingsBalance      core.Money `json:"savingsBalance"`
}

// OverBudget reports whether spending passed the total budgeted amount.
func (s Summary) OverBudget() bool {
	return s.TotalSpent.Cents > s.TotalBudgeted.Cents
}

// CategorySpend is the spending of one monthly category.
type CategorySpend struct {
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Budget       core.Money `json:"budget"`
	Spent        core.Money `json:"spent"`
	Remaining    core.Money `json:"remaining"`
	Percentage   float64    `json:"percentage"`
	Status       Status     `json:"status"`
}

// Exceeded reports whether the whole budget is used. A zero budget never is.
func (c CategorySpend) Exceeded() bool {
	return c.Budget.IsPositive() && c.Spent.Cents >= c.Budget.Cents
}

// Warning reports whether at least WarningPercent of the budget is used.
func (c CategorySpend) Warning() bool {
	return c.Budget.IsPositive() && c.Spent.Cents*100 >= c.Budget.Cents*WarningPercent
}

// Overspent reports whether spending is strictly above the budget.
func (c CategorySpend) Overspent() bool {
	return c.Spent.Cents > c.Budget.Cents
}

// IncomeShare is the contribution of one income source to a month.
type IncomeShare struct {
	SourceID   string     `json:"sourceId"`
	SourceName string     `json:"sourceName"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
}

// Summarize computes the totals of month from the full record lists.
func Summarize(incomes []core.Income, expenses []core.Expense, monthly []core.MonthlyCategory, contributions []core.SavingsContribution, month string) Summary {
	s := Summary{Month: month}
	for _, i := range incomes {
		if i.Date.InMonth(month) {
			s.TotalIncome = s.TotalIncome.Add(i.Amount)
		}
	}
	for _, mc := range monthly {
		if mc.Month == month {
			s.TotalBudgeted = s.TotalBudgeted.Add(mc.EffectiveBudget())
		}
	}
	for _, e := range expenses {
		if e.Date.InMonth(month) {
			s.TotalSpent = s.TotalSpent.Add(e.Amount)
		}
	}
	for _, c := range contributions {
		if c.Date.InMonth(month) {
			s.SavingsBalance = s.SavingsBalance.Add(c.Amount)
		}
	}
	s.Remaining = s.TotalIncome.Sub(s.TotalSpent).Sub(s.SavingsBalance)
	s.NetDisposableIncome = s.TotalIncome.Sub(s.TotalBudgeted).Sub(s.SavingsBalance)
	return s
}

// CategorySpending returns one entry per monthly category of month, in the
// order the rows appear.
func CategorySpending(monthly []core.MonthlyCategory, expenses []core.Expense, month string) []CategorySpend {
	out := make([]CategorySpend, 0)
	for _, mc := range monthly {
		if mc.Month != month {
			continue
		}
		cs := CategorySpend{
			CategoryID:   mc.CategoryID,
			CategoryName: mc.CategoryName,
			Budget:       mc.EffectiveBudget(),
			Spent:        spentIn(expenses, mc.CategoryID, month),
		}
		cs.Remaining = cs.Budget.Sub(cs.Spent)
		cs.Percentage = cs.Spent.PercentOf(cs.Budget)
		switch {
		case cs.Exceeded():
			cs.Status = StatusDanger
		case cs.Warning():
			cs.Status = StatusWarning
		default:
			cs.Status = StatusHealthy
		}
		out = append(out, cs)
	}
	return out
}

// IncomeBreakdown groups the incomes of month by source, in first-seen order.
func IncomeBreakdown(incomes []core.Income, month string) []IncomeShare {
	out := make([]IncomeShare, 0)
	index := make(map[string]int)
	var total core.Money

	for _, i := range incomes {
		if !i.Date.InMonth(month) {
			continue
		}
		total = total.Add(i.Amount)
		idx, ok := index[i.SourceID]
		if !ok {
			idx = len(out)
			index[i.SourceID] = idx
			out = append(out, IncomeShare{SourceID: i.SourceID, SourceName: i.SourceName})
		}
		out[idx].Amount = out[idx].Amount.Add(i.Amount)
	}
	for k := range out {
		out[k].Percentage = out[k].Amount.PercentOf(total)
	}
	return out
}

// SavingsProgress is the share of target already saved, capped at 100.
func SavingsProgress(target, current core.Money) float64 {
	if !target.IsPositive() {
		return 0
	}
	return min(current.PercentOf(target), 100)
}
