package analytics

import (
	"slices"
	"testing"

	"housebudget/internal/budget"
	"housebudget/internal/core"
	"housebudget/internal/month"
)

func exp(cat, name, member string, nw core.NeedsOrWants, cents int64, y, m, d int) core.Expense {
	return core.Expense{
		CategoryID: cat, CategoryName: name, MemberID: member, NeedsOrWants: nw,
		Amount: core.Cents(cents), Date: core.NewDate(y, m, d),
	}
}

func inc(source string, cents int64, y, m, d int) core.Income {
	return core.Income{SourceID: source, SourceName: source, Amount: core.Cents(cents), Date: core.NewDate(y, m, d)}
}

func span(t *testing.T, a, b string) month.Span {
	t.Helper()
	s, err := month.NewSpan(a, b)
	if err != nil {
		t.Fatalf("span: %v", err)
	}
	return s
}

func TestSpendingTrends(t *testing.T) {
	expenses := []core.Expense{
		exp("c1", "Food", "u1", core.Needs, 1000, 2025, 1, 3),
		exp("c2", "Fun", "u1", core.Wants, 500, 2025, 1, 9),
		exp("c1", "Food", "u1", core.Needs, 700, 2025, 3, 1),
		exp("c1", "Food", "u1", core.Needs, 9999, 2025, 4, 1),
	}
	got := SpendingTrends(expenses, span(t, "2025-01", "2025-03"))
	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %d", len(got))
	}
	if got[0].TotalSpent.Cents != 1500 || got[0].NeedsSpent.Cents != 1000 || got[0].WantsSpent.Cents != 500 {
		t.Fatalf("unexpected january %+v", got[0])
	}
	if got[1].Month != "2025-02" || !got[1].TotalSpent.IsZero() {
		t.Fatalf("february should be present and empty, got %+v", got[1])
	}
	if got[2].TotalSpent.Cents != 700 {
		t.Fatalf("unexpected march %+v", got[2])
	}
}

func TestIncomeTrends(t *testing.T) {
	incomes := []core.Income{
		inc("Salary", 5000, 2025, 1, 1),
		inc("Salary", 1000, 2025, 1, 15),
		{Amount: core.Cents(200), Date: core.NewDate(2025, 1, 20)},
	}
	got := IncomeTrends(incomes, month.Single("2025-01"))
	if len(got) != 1 || got[0].TotalIncome.Cents != 6200 {
		t.Fatalf("unexpected trends %+v", got)
	}
	if got[0].BySource["Salary"].Cents != 6000 || got[0].BySource[UnknownSource].Cents != 200 {
		t.Fatalf("unexpected by-source %+v", got[0].BySource)
	}
}

func TestCategoryTrendsKeepsEveryCategory(t *testing.T) {
	categories := []core.Category{{ID: "c1", Name: "Food"}, {ID: "c2", Name: "Idle"}}
	expenses := []core.Expense{exp("c1", "Food", "u1", core.Needs, 300, 2025, 2, 2)}
	got := CategoryTrends(expenses, categories, span(t, "2025-01", "2025-02"))
	if len(got) != 2 {
		t.Fatalf("expected both categories, got %d", len(got))
	}
	if got[1].CategoryID != "c2" || len(got[1].MonthlyData) != 2 {
		t.Fatalf("idle category should be zero-filled, got %+v", got[1])
	}
	if got[0].MonthlyData[0].Amount.Cents != 0 || got[0].MonthlyData[1].Amount.Cents != 300 {
		t.Fatalf("unexpected series %+v", got[0].MonthlyData)
	}
}

func TestMonthOverMonth(t *testing.T) {
	incomes := []core.Income{inc("s", 10000, 2025, 1, 1)}
	expenses := []core.Expense{
		exp("c1", "Food", "u1", core.Needs, 2500, 2025, 1, 5),
		exp("c1", "Food", "u1", core.Needs, 400, 2025, 2, 5),
	}
	got := MonthOverMonth(expenses, incomes, []string{"2025-01", "2025-02"})
	if got[0].Saved.Cents != 7500 || got[0].SavingsRate != 75 {
		t.Fatalf("unexpected january %+v", got[0])
	}
	if got[1].Saved.Cents != -400 || got[1].SavingsRate != 0 {
		t.Fatalf("no-income month must have savings rate 0, got %+v", got[1])
	}
}

func TestHealthScore(t *testing.T) {
	overspent := budget.CategorySpend{Budget: core.Cents(100), Spent: core.Cents(200)}
	fine := budget.CategorySpend{Budget: core.Cents(100), Spent: core.Cents(50)}

	cases := []struct {
		name    string
		summary budget.Summary
		cats    []budget.CategorySpend
		score   int
		status  HealthStatus
		factors []string
	}{
		{
			name:    "perfect",
			summary: budget.Summary{TotalBudgeted: core.Cents(1000), TotalSpent: core.Cents(500), TotalIncome: core.Cents(1000), Remaining: core.Cents(500)},
			cats:    []budget.CategorySpend{fine},
			score:   100,
			status:  HealthExcellent,
			factors: []string{"Within budget", "Good savings rate (20%+)"},
		},
		{
			name:    "approaching with low savings",
			summary: budget.Summary{TotalBudgeted: core.Cents(1000), TotalSpent: core.Cents(950), TotalIncome: core.Cents(1000), Remaining: core.Cents(150)},
			score:   75,
			status:  HealthGood,
			factors: []string{"Approaching budget limit", "Low savings rate (10-20%)"},
		},
		{
			name:    "clamped at zero",
			summary: budget.Summary{TotalBudgeted: core.Cents(100), TotalSpent: core.Cents(500), TotalIncome: core.Cents(100), Remaining: core.Cents(-400)},
			cats:    []budget.CategorySpend{overspent, overspent, overspent, overspent, overspent},
			score:   0,
			status:  HealthPoor,
			factors: []string{"Over budget", "5 categories over budget", "Poor savings rate (<10%)"},
		},
		{
			name:    "no budget no income",
			summary: budget.Summary{},
			score:   100,
			status:  HealthExcellent,
			factors: []string{},
		},
		{
			name:    "exactly 90 percent is within budget",
			summary: budget.Summary{TotalBudgeted: core.Cents(1000), TotalSpent: core.Cents(900)},
			score:   100,
			status:  HealthExcellent,
			factors: []string{"Within budget"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := HealthScore(tc.summary, tc.cats)
			if h.Score != tc.score || h.Status != tc.status {
				t.Fatalf("expected %d/%s, got %d/%s", tc.score, tc.status, h.Score, h.Status)
			}
			if !slices.Equal(h.Factors, tc.factors) {
				t.Fatalf("expected factors %v, got %v", tc.factors, h.Factors)
			}
		})
	}
}

func TestSpendingByMember(t *testing.T) {
	members := []core.Member{{ID: "u2", Name: "Bo"}, {ID: "u1", Name: "Ada"}, {ID: "u3", Name: "Cy"}}
	expenses := []core.Expense{
		exp("c1", "Food", "u1", core.Needs, 7500, 2025, 1, 1),
		exp("c1", "Food", "u2", core.Needs, 2500, 2025, 1, 1),
		exp("c1", "Food", "u2", core.Needs, 9999, 2024, 1, 1),
	}
	got := SpendingByMember(expenses, members, month.Single("2025-01"))
	if len(got) != 3 || got[0].MemberID != "u2" || got[0].Percentage != 25 || got[1].Percentage != 75 || got[2].Percentage != 0 {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestNeedsVsWants(t *testing.T) {
	expenses := []core.Expense{
		exp("c1", "Food", "u1", core.Needs, 3000, 2025, 1, 1),
		exp("c2", "Fun", "u1", core.Wants, 1000, 2025, 1, 1),
	}
	got := NeedsVsWants(expenses, month.Single("2025-01"))
	if got.Needs.Cents != 3000 || got.NeedsPercentage != 75 || got.WantsPercentage != 25 {
		t.Fatalf("unexpected %+v", got)
	}
	empty := NeedsVsWants(nil, month.Single("2025-01"))
	if empty.NeedsPercentage != 0 || empty.WantsPercentage != 0 {
		t.Fatalf("empty split should be zero, got %+v", empty)
	}
}

func TestTopCategories(t *testing.T) {
	expenses := []core.Expense{
		exp("a", "A", "u1", core.Needs, 100, 2025, 1, 1),
		exp("b", "B", "u1", core.Needs, 300, 2025, 1, 1),
		exp("c", "C", "u1", core.Needs, 100, 2025, 1, 1),
		exp("d", "D", "u1", core.Needs, 500, 2025, 1, 1),
	}
	got := TopCategories(expenses, 3, month.Single("2025-01"))
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.CategoryID)
	}
	if !slices.Equal(ids, []string{"d", "b", "a"}) {
		t.Fatalf("expected stable ranking d,b,a got %v", ids)
	}
	if got[0].Percentage != 50 {
		t.Fatalf("unexpected percentage %v", got[0].Percentage)
	}
	if all := TopCategories(expenses, 0, month.Single("2025-01")); len(all) != 4 {
		t.Fatalf("default limit should keep all four, got %d", len(all))
	}
}

func TestCategoryAverages(t *testing.T) {
	expenses := []core.Expense{
		exp("c1", "Food", "u1", core.Needs, 1000, 2025, 1, 1),
		exp("c1", "Food", "u1", core.Needs, 2000, 2025, 1, 20),
		exp("c1", "Food", "u1", core.Needs, 1000, 2025, 3, 1),
		exp("c2", "Fun", "u1", core.Wants, 5000, 2025, 2, 1),
		exp("c2", "Fun", "u1", core.Wants, 5000, 2024, 2, 1),
	}
	got := CategoryAverages(expenses, month.List("2025-01", "2025-03"))
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].CategoryID != "c2" || got[0].MonthCount != 1 || got[0].AvgSpent.Cents != 5000 {
		t.Fatalf("unexpected first %+v", got[0])
	}
	if got[1].TotalSpent.Cents != 4000 || got[1].MonthCount != 2 || got[1].AvgSpent.Cents != 2000 {
		t.Fatalf("average must use active months only, got %+v", got[1])
	}
}

func TestBuildReport(t *testing.T) {
	in := ReportInput{
		Incomes: []core.Income{inc("s", 10000, 2025, 1, 1), inc("s", 10000, 2025, 2, 1)},
		Expenses: []core.Expense{
			exp("c1", "Food", "u1", core.Needs, 5000, 2025, 1, 1),
			exp("c2", "Fun", "u2", core.Wants, 1000, 2025, 2, 1),
		},
		Members: []core.Member{{ID: "u1"}},
		Span:    span(t, "2025-01", "2025-02"),
	}
	r := BuildReport(in)
	if r.Totals.TotalIncome.Cents != 20000 || r.Totals.TotalSpending.Cents != 6000 || r.Totals.TotalSaved.Cents != 14000 {
		t.Fatalf("unexpected totals %+v", r.Totals)
	}
	if r.Totals.SavingsRate != 70 || r.Totals.AverageMonthlyIncome.Cents != 10000 || r.Totals.AverageMonthlySpent.Cents != 3000 {
		t.Fatalf("unexpected derived totals %+v", r.Totals)
	}
	if len(r.Monthly) != 2 || len(r.Averages) != 2 {
		t.Fatalf("unexpected sections %+v", r)
	}
	if r.ByMember != nil {
		t.Fatalf("single member household should not get a member section")
	}
	in.Members = append(in.Members, core.Member{ID: "u2"})
	if r := BuildReport(in); len(r.ByMember) != 2 {
		t.Fatalf("expected member section, got %+v", r.ByMember)
	}
}
