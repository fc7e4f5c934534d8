package ledger

import (
	"housebudget/internal/analytics"
	"housebudget/internal/budget"
	"housebudget/internal/core"
	"housebudget/internal/month"
)

// MonthData is the slice of the ledger that belongs to one month.
type MonthData struct {
	Month      string                 `json:"month"`
	Incomes    []core.Income          `json:"incomes"`
	Expenses   []core.Expense         `json:"expenses"`
	Categories []core.MonthlyCategory `json:"categories"`

	// Set by callers that know the clock.
	IsCurrent bool `json:"isCurrent"`
	IsFuture  bool `json:"isFuture"`
}

// GoalProgress is a savings goal with how far it has come.
type GoalProgress struct {
	core.SavingsGoal
	Progress  float64    `json:"progress"`
	Remaining core.Money `json:"remaining"`
	Completed bool       `json:"completed"`
}

// ProgressOf reports g against its target. Remaining never goes below zero.
func ProgressOf(g core.SavingsGoal) GoalProgress {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Cents < 0 {
		remaining = core.Money{}
	}
	return GoalProgress{
		SavingsGoal: g,
		Progress:    budget.SavingsProgress(g.TargetAmount, g.CurrentAmount),
		Remaining:   remaining,
		Completed:   !remaining.IsPositive(),
	}
}

// ExportFilter narrows ExportData. Zero fields match everything; date
// bounds are inclusive.
type ExportFilter struct {
	From       core.Date
	To         core.Date
	CategoryID string
	MemberID   string
}

func (l Ledger) source(id string) (core.IncomeSource, error) {
	i := indexByID(l.IncomeSources, id, sourceID)
	if i < 0 {
		return core.IncomeSource{}, notFound("income source", id)
	}
	return l.IncomeSources[i], nil
}

func (l Ledger) member(id string) (core.Member, error) {
	i := indexByID(l.Members, id, memberID)
	if i < 0 {
		return core.Member{}, notFound("member", id)
	}
	return l.Members[i], nil
}

func (l Ledger) category(id string) (core.Category, error) {
	i := indexByID(l.Categories, id, categoryID)
	if i < 0 {
		return core.Category{}, notFound("category", id)
	}
	return l.Categories[i], nil
}

func (l Ledger) monthlyFor(categoryID, m string) (core.MonthlyCategory, bool) {
	for _, mc := range l.MonthlyCategories {
		if mc.CategoryID == categoryID && mc.Month == m {
			return mc, true
		}
	}
	return core.MonthlyCategory{}, false
}

// HasMonth reports whether m already has budget rows.
func (l Ledger) HasMonth(m string) bool {
	for _, mc := range l.MonthlyCategories {
		if mc.Month == m {
			return true
		}
	}
	return false
}

// IncomesFromSource counts the incomes that reference sourceID.
func (l Ledger) IncomesFromSource(sourceID string) int {
	n := 0
	for _, inc := range l.Incomes {
		if inc.SourceID == sourceID {
			n++
		}
	}
	return n
}

// Currency is the household currency, USD before onboarding.
func (l Ledger) Currency() core.Currency {
	if l.Household == nil || !l.Household.Currency.Valid() {
		return core.USD
	}
	return l.Household.Currency
}

func (l Ledger) MonthData(m string) MonthData {
	d := MonthData{
		Month:      m,
		Incomes:    []core.Income{},
		Expenses:   []core.Expense{},
		Categories: []core.MonthlyCategory{},
	}
	for _, inc := range l.Incomes {
		if inc.Date.InMonth(m) {
			d.Incomes = append(d.Incomes, inc)
		}
	}
	for _, exp := range l.Expenses {
		if exp.Date.InMonth(m) {
			d.Expenses = append(d.Expenses, exp)
		}
	}
	for _, mc := range l.MonthlyCategories {
		if mc.Month == m {
			d.Categories = append(d.Categories, mc)
		}
	}
	return d
}

// ExportData returns the incomes and expenses matching f. The category
// filter only applies to expenses.
func (l Ledger) ExportData(f ExportFilter) ([]core.Income, []core.Expense) {
	inDates := func(d core.Date) bool {
		if !f.From.IsZero() && d.Compare(f.From) < 0 {
			return false
		}
		if !f.To.IsZero() && d.Compare(f.To) > 0 {
			return false
		}
		return true
	}

	incomes := []core.Income{}
	for _, inc := range l.Incomes {
		if inDates(inc.Date) && (f.MemberID == "" || inc.MemberID == f.MemberID) {
			incomes = append(incomes, inc)
		}
	}
	expenses := []core.Expense{}
	for _, exp := range l.Expenses {
		if !inDates(exp.Date) {
			continue
		}
		if f.CategoryID != "" && exp.CategoryID != f.CategoryID {
			continue
		}
		if f.MemberID != "" && exp.MemberID != f.MemberID {
			continue
		}
		expenses = append(expenses, exp)
	}
	return incomes, expenses
}

func (l Ledger) Summary(m string) budget.Summary {
	return budget.Summarize(l.Incomes, l.Expenses, l.MonthlyCategories, l.SavingsContributions, m)
}

func (l Ledger) Spending(m string) []budget.CategorySpend {
	return budget.CategorySpending(l.MonthlyCategories, l.Expenses, m)
}

func (l Ledger) IncomeBreakdown(m string) []budget.IncomeShare {
	return budget.IncomeBreakdown(l.Incomes, m)
}

// CarryOvers previews what each category would carry into m.
func (l Ledger) CarryOvers(m string) map[string]core.Money {
	return budget.CarryOvers(m, l.MonthlyCategories, l.Expenses, l.Categories)
}

func (l Ledger) Health(m string) analytics.Health {
	return analytics.HealthScore(l.Summary(m), l.Spending(m))
}

// PendingAlerts runs the alert engine for m against the stored alerts.
func (l Ledger) PendingAlerts(m string) []core.Alert {
	return budget.CheckAlerts(l.Spending(m), l.Summary(m), l.Alerts, l.Currency())
}

// GoalsProgress lists every savings goal with its progress, in stored order.
func (l Ledger) GoalsProgress() []GoalProgress {
	out := make([]GoalProgress, 0, len(l.SavingsGoals))
	for _, g := range l.SavingsGoals {
		out = append(out, ProgressOf(g))
	}
	return out
}

// ActiveAlerts returns the alerts that have not been dismissed.
func (l Ledger) ActiveAlerts() []core.Alert {
	out := []core.Alert{}
	for _, a := range l.Alerts {
		if a.Active() {
			out = append(out, a)
		}
	}
	return out
}

// Report builds the analytics report over span, scoring health on the
// span's last month.
func (l Ledger) Report(span month.Span) analytics.Report {
	health := l.Health(span.End)
	return analytics.BuildReport(analytics.ReportInput{
		Incomes:  l.Incomes,
		Expenses: l.Expenses,
		Members:  l.Members,
		Span:     span,
		Health:   &health,
	})
}
