// Package analytics aggregates ledger records into time series and
// breakdowns over a span of months. Every function is pure and follows the
// same shape: for each month in range, keep the records dated in that month
// and reduce them.
package analytics

import (
	"housebudget/internal/core"
	"housebudget/internal/month"
)

// UnknownSource labels incomes whose source name snapshot is empty.
const UnknownSource = "Unknown"

type SpendingTrend struct {
	Month      string     `json:"month"`
	TotalSpent core.Money `json:"totalSpent"`
	NeedsSpent core.Money `json:"needsSpent"`
	WantsSpent core.Money `json:"wantsSpent"`
}

type IncomeTrend struct {
	Month       string                `json:"month"`
	TotalIncome core.Money            `json:"totalIncome"`
	BySource    map[string]core.Money `json:"bySource"`
}

type CategoryTrend struct {
	CategoryID   string             `json:"categoryId"`
	CategoryName string             `json:"categoryName"`
	MonthlyData  []core.MonthAmount `json:"monthlyData"`
}

type MonthComparison struct {
	Month       string     `json:"month"`
	Income      core.Money `json:"income"`
	Spent       core.Money `json:"spent"`
	Saved       core.Money `json:"saved"`
	SavingsRate float64    `json:"savingsRate"`
}

func SpendingTrends(expenses []core.Expense, span month.Span) []SpendingTrend {
	out := make([]SpendingTrend, 0, span.Count())
	for m := range span.Months() {
		t := SpendingTrend{Month: m}
		for _, e := range expenses {
			if !e.Date.InMonth(m) {
				continue
			}
			t.TotalSpent = t.TotalSpent.Add(e.Amount)
			switch e.NeedsOrWants {
			case core.Needs:
				t.NeedsSpent = t.NeedsSpent.Add(e.Amount)
			case core.Wants:
				t.WantsSpent = t.WantsSpent.Add(e.Amount)
			}
		}
		out = append(out, t)
	}
	return out
}

func IncomeTrends(incomes []core.Income, span month.Span) []IncomeTrend {
	out := make([]IncomeTrend, 0, span.Count())
	for m := range span.Months() {
		t := IncomeTrend{Month: m, BySource: make(map[string]core.Money)}
		for _, i := range incomes {
			if !i.Date.InMonth(m) {
				continue
			}
			t.TotalIncome = t.TotalIncome.Add(i.Amount)
			name := i.SourceName
			if name == "" {
				name = UnknownSource
			}
			t.BySource[name] = t.BySource[name].Add(i.Amount)
		}
		out = append(out, t)
	}
	return out
}

// CategoryTrends returns one zero-filled series per category template.
// Categories with no spending are kept.
func CategoryTrends(expenses []core.Expense, categories []core.Category, span month.Span) []CategoryTrend {
	months := span.List()
	out := make([]CategoryTrend, 0, len(categories))
	for _, c := range categories {
		series := make([]core.MonthAmount, 0, len(months))
		for _, m := range months {
			var spent core.Money
			for _, e := range expenses {
				if e.CategoryID == c.ID && e.Date.InMonth(m) {
					spent = spent.Add(e.Amount)
				}
			}
			series = append(series, core.MonthAmount{Month: m, Amount: spent})
		}
		out = append(out, CategoryTrend{CategoryID: c.ID, CategoryName: c.Name, MonthlyData: series})
	}
	return out
}

// MonthOverMonth compares income, spending and savings for the given months.
// The savings rate is 0 for months without income.
func MonthOverMonth(expenses []core.Expense, incomes []core.Income, months []string) []MonthComparison {
	out := make([]MonthComparison, 0, len(months))
	for _, m := range months {
		c := MonthComparison{Month: m}
		for _, i := range incomes {
			if i.Date.InMonth(m) {
				c.Income = c.Income.Add(i.Amount)
			}
		}
		for _, e := range expenses {
			if e.Date.InMonth(m) {
				c.Spent = c.Spent.Add(e.Amount)
			}
		}
		c.Saved = c.Income.Sub(c.Spent)
		c.SavingsRate = savingsRate(c.Saved, c.Income)
		out = append(out, c)
	}
	return out
}

func savingsRate(saved, income core.Money) float64 {
	if !income.IsPositive() {
		return 0
	}
	return float64(saved.Cents) * 100 / float64(income.Cents)
}

// inSpan keeps the records dated inside span.
func inSpan[T any](items []T, span month.Span, date func(T) core.Date) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		d := date(it)
		if !d.IsZero() && span.Contains(d.MonthToken()) {
			out = append(out, it)
		}
	}
	return out
}

func expenseDate(e core.Expense) core.Date { return e.Date }
func incomeDate(i core.Income) core.Date   { return i.Date }
