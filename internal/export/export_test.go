package export

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"housebudget/internal/analytics"
	"housebudget/internal/core"
	"housebudget/internal/month"
)

func TestFilenames(t *testing.T) {
	span := month.Span{Start: "2025-01", End: "2025-03"}
	if got := TransactionsFilename(span); got != "transactions-2025-01-to-2025-03.csv" {
		t.Fatalf("unexpected %s", got)
	}
	if got := ReportFilename(span); got != "analytics-report-2025-01-to-2025-03.csv" {
		t.Fatalf("unexpected %s", got)
	}
	if got := QuickSummaryFilename(time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)); got != "budget-summary-2025-04-02.csv" {
		t.Fatalf("unexpected %s", got)
	}
}

func TestWriteTransactions(t *testing.T) {
	expenses := []core.Expense{
		{Amount: core.Cents(8500), CategoryName: "Food, drinks", MemberName: "Ada", NeedsOrWants: core.Needs, Date: core.NewDate(2025, 1, 15), Notes: `said "hi"`},
		{Amount: core.Cents(100), CategoryName: "Old", MemberName: "Ada", NeedsOrWants: core.Wants, Date: core.NewDate(2024, 12, 31)},
	}
	incomes := []core.Income{
		{Amount: core.Cents(300000), SourceName: "Salary", MemberName: "Bo", Date: core.NewDate(2025, 1, 15), Notes: "line1\nline2"},
		{Amount: core.Cents(5000), SourceName: "Gift", MemberName: "Bo", Date: core.NewDate(2025, 2, 1)},
	}
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, expenses, incomes, month.Span{Start: "2025-01", End: "2025-02"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"Date,Type,Amount,Category,Member,Source/Category,Needs/Wants,Notes",
		"2025-02-01,Income,50.00,Gift,Bo,Gift,,",
		`2025-01-15,Expense,85.00,"Food, drinks",Ada,"Food, drinks",needs,"said ""hi"""`,
		"2025-01-15,Income,3000.00,Salary,Bo,Salary,,\"line1\nline2\"",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteReport(t *testing.T) {
	r := analytics.Report{
		Span: month.Span{Start: "2025-01", End: "2025-02"},
		Totals: analytics.Totals{
			TotalIncome: core.Cents(20000), TotalSpending: core.Cents(6000), TotalSaved: core.Cents(14000),
			SavingsRate: 70, HasIncome: true, AverageMonthlyIncome: core.Cents(10000), AverageMonthlySpent: core.Cents(3000),
		},
		Health: &analytics.Health{Score: 85, Status: analytics.HealthExcellent},
		Monthly: []analytics.MonthComparison{
			{Month: "2025-01", Income: core.Cents(20000), Spent: core.Cents(5000), Saved: core.Cents(15000), SavingsRate: 75},
			{Month: "2025-02", Spent: core.Cents(1000), Saved: core.Cents(-1000)},
		},
		Averages: []analytics.CategoryAverage{{CategoryName: "Food", TotalSpent: core.Cents(5000), AvgSpent: core.Cents(5000), MonthCount: 1}},
		ByMember: []analytics.MemberSpend{{MemberName: "Ada", TotalSpent: core.Cents(6000), Percentage: 100}},
		NeedsWants: analytics.NeedsWants{
			Needs: core.Cents(5000), Wants: core.Cents(1000), NeedsPercentage: 500.0 / 6, WantsPercentage: 100.0 / 6,
		},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"SUMMARY STATISTICS",
		"Metric,Value",
		"Total Income,200.00",
		"Total Spending,60.00",
		"Total Saved,140.00",
		"Savings Rate,70.0%",
		"Average Monthly Income,100.00",
		"Average Monthly Spending,30.00",
		"Budget Health Score,85",
		"Budget Health Status,excellent",
		"",
		"MONTHLY BREAKDOWN",
		"Month,Income,Spending,Saved,Savings Rate (%)",
		"2025-01,200.00,50.00,150.00,75.0",
		"2025-02,0.00,10.00,-10.00,0",
		"",
		"CATEGORY SPENDING AVERAGES",
		"Category,Total Spent,Average Per Month,Months Data",
		"Food,50.00,50.00,1",
		"",
		"SPENDING BY MEMBER",
		"Member,Total Spent,Percentage (%)",
		"Ada,60.00,100.0",
		"",
		"NEEDS VS WANTS BREAKDOWN",
		"Category,Amount,Percentage (%)",
		"Needs,50.00,83.3",
		"Wants,10.00,16.7",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteReportOmitsOptionalSections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, analytics.Report{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "SPENDING BY MEMBER") || strings.Contains(out, "Budget Health") {
		t.Fatalf("optional sections must be omitted:\n%s", out)
	}
	if !strings.Contains(out, "Savings Rate,0%\n") || !strings.Contains(out, "Needs,0.00,0\n") {
		t.Fatalf("zero rates must print as 0:\n%s", out)
	}
}

func TestWriteQuickSummary(t *testing.T) {
	expenses := []core.Expense{
		{Amount: core.Cents(100), CategoryName: "A", Date: core.NewDate(2025, 1, 1)},
		{Amount: core.Cents(300), CategoryName: "B", Date: core.NewDate(2025, 1, 1)},
		{Amount: core.Cents(200), CategoryName: "A", Date: core.NewDate(2025, 2, 1)},
		{Amount: core.Cents(999), CategoryName: "Z", Date: core.NewDate(2025, 5, 1)},
	}
	incomes := []core.Income{{Amount: core.Cents(1000), Date: core.NewDate(2025, 1, 1)}}
	var buf bytes.Buffer
	if err := WriteQuickSummary(&buf, incomes, expenses, []string{"2025-01", "2025-02"}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"Metric,Value",
		"Time Period,2025-01 to 2025-02",
		"Total Income,10.00",
		"Total Expenses,6.00",
		"Net Savings,4.00",
		"Month Count,2",
		",",
		"Top 5 Categories,",
		"A,3.00",
		"B,3.00",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCombined(t *testing.T) {
	span := month.Span{Start: "2025-01", End: "2025-01"}
	var buf bytes.Buffer
	err := WriteCombined(&buf, CombinedInput{
		Expenses: []core.Expense{{Amount: core.Cents(100), CategoryName: "A", NeedsOrWants: core.Needs, Date: core.NewDate(2025, 1, 1)}},
		Report:   analytics.Report{Span: span},
		Now:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(zr.File))
	}
	if zr.File[0].Name != "transactions-2025-01-to-2025-01.csv" || zr.File[1].Name != "analytics-report-2025-01-to-2025-01.csv" {
		t.Fatalf("unexpected names %s, %s", zr.File[0].Name, zr.File[1].Name)
	}
}
