package analytics

import (
	"housebudget/internal/core"
	"housebudget/internal/month"
)

// ReportInput is everything needed to build a Report.
type ReportInput struct {
	Incomes  []core.Income
	Expenses []core.Expense
	Members  []core.Member
	Span     month.Span
	// Health is optional and copied into the summary section when set.
	Health *Health
}

// Totals is the summary statistics block of a report.
type Totals struct {
	TotalIncome          core.Money `json:"totalIncome"`
	TotalSpending        core.Money `json:"totalSpending"`
	TotalSaved           core.Money `json:"totalSaved"`
	SavingsRate          float64    `json:"savingsRate"`
	AverageMonthlyIncome core.Money `json:"averageMonthlyIncome"`
	AverageMonthlySpent  core.Money `json:"averageMonthlySpending"`
	HasIncome            bool       `json:"hasIncome"`
	MonthCount           int        `json:"monthCount"`
}

// Report bundles the analytics shown in the report export and mirrored to
// spreadsheets.
type Report struct {
	Span       month.Span        `json:"span"`
	Totals     Totals            `json:"totals"`
	Health     *Health           `json:"health,omitempty"`
	Monthly    []MonthComparison `json:"monthly"`
	Averages   []CategoryAverage `json:"categoryAverages"`
	ByMember   []MemberSpend     `json:"byMember,omitempty"`
	NeedsWants NeedsWants        `json:"needsWants"`
}

// BuildReport aggregates the input over its span. The per-member section is
// only filled for households with more than one member.
func BuildReport(in ReportInput) Report {
	months := in.Span.List()
	spending := SpendingTrends(in.Expenses, in.Span)
	income := IncomeTrends(in.Incomes, in.Span)

	var t Totals
	for _, s := range spending {
		t.TotalSpending = t.TotalSpending.Add(s.TotalSpent)
	}
	for _, i := range income {
		t.TotalIncome = t.TotalIncome.Add(i.TotalIncome)
	}
	t.TotalSaved = t.TotalIncome.Sub(t.TotalSpending)
	t.HasIncome = t.TotalIncome.IsPositive()
	t.SavingsRate = savingsRate(t.TotalSaved, t.TotalIncome)
	t.MonthCount = len(months)
	t.AverageMonthlyIncome = t.TotalIncome.Div(len(months))
	t.AverageMonthlySpent = t.TotalSpending.Div(len(months))

	r := Report{
		Span:       in.Span,
		Totals:     t,
		Health:     in.Health,
		Monthly:    MonthOverMonth(in.Expenses, in.Incomes, months),
		Averages:   CategoryAverages(in.Expenses, months),
		NeedsWants: NeedsVsWants(in.Expenses, in.Span),
	}
	if len(in.Members) > 1 {
		r.ByMember = SpendingByMember(in.Expenses, in.Members, in.Span)
	}
	return r
}

// SpanTotals sums incomes and expenses dated inside span.
func SpanTotals(incomes []core.Income, expenses []core.Expense, span month.Span) (income, spent core.Money) {
	income = core.Sum(inSpan(incomes, span, incomeDate), func(i core.Income) core.Money { return i.Amount })
	spent = core.Sum(inSpan(expenses, span, expenseDate), func(e core.Expense) core.Money { return e.Amount })
	return income, spent
}
