package transactions

import (
	"housebudget/internal/core"
)

// Stats summarizes a list of transactions.
type Stats struct {
	TotalCount    int        `json:"totalCount"`
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpense  core.Money `json:"totalExpense"`
	NetAmount     core.Money `json:"netAmount"`
	AverageAmount core.Money `json:"averageAmount"`
	DateRange     DateRange  `json:"dateRange"`
}

// DateRange is the earliest and latest date seen, both zero for no data.
type DateRange struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

func (r *DateRange) include(d core.Date) {
	if d.IsZero() {
		return
	}
	if r.Start.IsZero() || d.Compare(r.Start) < 0 {
		r.Start = d
	}
	if r.End.IsZero() || d.Compare(r.End) > 0 {
		r.End = d
	}
}

func Summarize(list []Transaction) Stats {
	s := Stats{TotalCount: len(list)}
	for _, t := range list {
		switch t.Type {
		case TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
		s.DateRange.include(t.Date)
	}
	s.NetAmount = s.TotalIncome.Sub(s.TotalExpense)
	s.AverageAmount = s.TotalIncome.Add(s.TotalExpense).Div(s.TotalCount)
	return s
}

// Options is what a transaction filter UI can offer.
type Options struct {
	Categories    []core.Category     `json:"categories"`
	IncomeSources []core.IncomeSource `json:"incomeSources"`
	Members       []core.Member       `json:"users"`
	DateRange     DateRange           `json:"dateRange"`
}

// FilterOptions collects the selectable entities and the overall date range
// of all incomes and expenses.
func FilterOptions(incomes []core.Income, expenses []core.Expense, categories []core.Category, sources []core.IncomeSource, members []core.Member) Options {
	o := Options{Categories: categories, IncomeSources: sources, Members: members}
	for _, i := range incomes {
		o.DateRange.include(i.Date)
	}
	for _, e := range expenses {
		o.DateRange.include(e.Date)
	}
	return o
}
