// Package export renders ledger data and analytics as CSV downloads.
//
// Fields containing a comma, a double quote or a line break are quoted with
// inner quotes doubled. Lines end with "\n".
package export

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"housebudget/internal/analytics"
	"housebudget/internal/core"
	"housebudget/internal/month"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypeZip = "application/zip"
)

var transactionHeader = []string{"Date", "Type", "Amount", "Category", "Member", "Source/Category", "Needs/Wants", "Notes"}

func TransactionsFilename(span month.Span) string {
	return fmt.Sprintf("transactions-%s-to-%s.csv", span.Start, span.End)
}

func ReportFilename(span month.Span) string {
	return fmt.Sprintf("analytics-report-%s-to-%s.csv", span.Start, span.End)
}

func CombinedFilename(span month.Span) string {
	return fmt.Sprintf("budget-export-%s-to-%s.zip", span.Start, span.End)
}

func QuickSummaryFilename(now time.Time) string {
	return fmt.Sprintf("budget-summary-%s.csv", now.UTC().Format("2006-01-02"))
}

type txRow struct {
	date   core.Date
	fields []string
}

// WriteTransactions writes one row per expense and income dated in span,
// newest first. On equal dates expenses come before incomes.
func WriteTransactions(w io.Writer, expenses []core.Expense, incomes []core.Income, span month.Span) error {
	rows := make([]txRow, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		if e.Date.IsZero() || !span.Contains(e.Date.MonthToken()) {
			continue
		}
		rows = append(rows, txRow{date: e.Date, fields: []string{
			e.Date.String(), "Expense", e.Amount.String(), e.CategoryName, e.MemberName,
			e.CategoryName, string(e.NeedsOrWants), e.Notes,
		}})
	}
	for _, i := range incomes {
		if i.Date.IsZero() || !span.Contains(i.Date.MonthToken()) {
			continue
		}
		rows = append(rows, txRow{date: i.Date, fields: []string{
			i.Date.String(), "Income", i.Amount.String(), i.SourceName, i.MemberName,
			i.SourceName, "", i.Notes,
		}})
	}
	slices.SortStableFunc(rows, func(a, b txRow) int { return b.date.Compare(a.date) })

	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.fields); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport writes the multi-section analytics report. Sections are
// separated by an empty line and each has its own header.
func WriteReport(w io.Writer, r analytics.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ReportRecords(r)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReportRecords lays out a report as rows of cells, one section after the
// other. The spreadsheet mirror writes the same rows.
func ReportRecords(r analytics.Report) [][]string {
	t := r.Totals

	records := [][]string{
		{"SUMMARY STATISTICS"},
		{"Metric", "Value"},
		{"Total Income", t.TotalIncome.String()},
		{"Total Spending", t.TotalSpending.String()},
		{"Total Saved", t.TotalSaved.String()},
		{"Savings Rate", rateOrZero(t.SavingsRate, t.HasIncome) + "%"},
		{"Average Monthly Income", t.AverageMonthlyIncome.String()},
		{"Average Monthly Spending", t.AverageMonthlySpent.String()},
	}
	if r.Health != nil {
		records = append(records,
			[]string{"Budget Health Score", fmt.Sprintf("%d", r.Health.Score)},
			[]string{"Budget Health Status", string(r.Health.Status)},
		)
	}

	records = append(records, []string{""}, []string{"MONTHLY BREAKDOWN"},
		[]string{"Month", "Income", "Spending", "Saved", "Savings Rate (%)"})
	for _, m := range r.Monthly {
		records = append(records, []string{
			m.Month, m.Income.String(), m.Spent.String(), m.Saved.String(),
			rateOrZero(m.SavingsRate, m.Income.IsPositive()),
		})
	}

	records = append(records, []string{""}, []string{"CATEGORY SPENDING AVERAGES"},
		[]string{"Category", "Total Spent", "Average Per Month", "Months Data"})
	for _, a := range r.Averages {
		records = append(records, []string{
			a.CategoryName, a.TotalSpent.String(), a.AvgSpent.String(), fmt.Sprintf("%d", a.MonthCount),
		})
	}

	if len(r.ByMember) > 0 {
		records = append(records, []string{""}, []string{"SPENDING BY MEMBER"},
			[]string{"Member", "Total Spent", "Percentage (%)"})
		for _, m := range r.ByMember {
			records = append(records, []string{m.MemberName, m.TotalSpent.String(), fmt.Sprintf("%.1f", m.Percentage)})
		}
	}

	nw := r.NeedsWants
	hasSplit := nw.Needs.Add(nw.Wants).IsPositive()
	records = append(records, []string{""}, []string{"NEEDS VS WANTS BREAKDOWN"},
		[]string{"Category", "Amount", "Percentage (%)"},
		[]string{"Needs", nw.Needs.String(), rateOrZero(nw.NeedsPercentage, hasSplit)},
		[]string{"Wants", nw.Wants.String(), rateOrZero(nw.WantsPercentage, hasSplit)},
	)
	return records
}

// rateOrZero prints a one-decimal percentage, or a bare "0" when there is
// nothing to divide by.
func rateOrZero(v float64, ok bool) string {
	if !ok {
		return "0"
	}
	return fmt.Sprintf("%.1f", v)
}

// QuickSummaryTopN is the number of categories listed in a quick summary.
const QuickSummaryTopN = 5

// WriteQuickSummary writes a short Metric,Value table for the given months.
// When withCategories is set it appends the top categories by name.
func WriteQuickSummary(w io.Writer, incomes []core.Income, expenses []core.Expense, months []string, withCategories bool) error {
	wanted := make(map[string]struct{}, len(months))
	for _, m := range months {
		wanted[m] = struct{}{}
	}
	in := func(d core.Date) bool {
		_, ok := wanted[d.MonthToken()]
		return ok && !d.IsZero()
	}

	var income, spent core.Money
	for _, i := range incomes {
		if in(i.Date) {
			income = income.Add(i.Amount)
		}
	}
	type named struct {
		name  string
		total core.Money
	}
	var byName []*named
	index := make(map[string]*named)
	for _, e := range expenses {
		if !in(e.Date) {
			continue
		}
		spent = spent.Add(e.Amount)
		n, ok := index[e.CategoryName]
		if !ok {
			n = &named{name: e.CategoryName}
			index[e.CategoryName] = n
			byName = append(byName, n)
		}
		n.total = n.total.Add(e.Amount)
	}

	period := ""
	if len(months) > 0 {
		period = months[0] + " to " + months[len(months)-1]
	}
	records := [][]string{
		{"Metric", "Value"},
		{"Time Period", period},
		{"Total Income", income.String()},
		{"Total Expenses", spent.String()},
		{"Net Savings", income.Sub(spent).String()},
		{"Month Count", fmt.Sprintf("%d", len(months))},
	}
	if withCategories {
		slices.SortStableFunc(byName, func(a, b *named) int { return cmp.Compare(b.total.Cents, a.total.Cents) })
		if len(byName) > QuickSummaryTopN {
			byName = byName[:QuickSummaryTopN]
		}
		records = append(records, []string{"", ""}, []string{"Top 5 Categories", ""})
		for _, n := range byName {
			records = append(records, []string{n.name, n.total.String()})
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
