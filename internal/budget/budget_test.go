package budget

import (
	"testing"

	"housebudget/internal/core"
)

func expense(cat string, cents int64, y, m, d int) core.Expense {
	return core.Expense{CategoryID: cat, Amount: core.Cents(cents), NeedsOrWants: core.Needs, Date: core.NewDate(y, m, d)}
}

func TestCarryOvers(t *testing.T) {
	categories := []core.Category{
		{ID: "food", CarryOverEnabled: true, MonthlyBudget: core.Cents(10000)},
		{ID: "fun", CarryOverEnabled: false, MonthlyBudget: core.Cents(5000)},
		{ID: "rent", CarryOverEnabled: true, MonthlyBudget: core.Cents(50000)},
		{ID: "new", CarryOverEnabled: true, MonthlyBudget: core.Cents(2000)},
	}
	monthly := []core.MonthlyCategory{
		{CategoryID: "food", Month: "2025-01", MonthlyBudget: core.Cents(10000)},
		{CategoryID: "fun", Month: "2025-01", MonthlyBudget: core.Cents(5000)},
		{CategoryID: "rent", Month: "2025-01", MonthlyBudget: core.Cents(50000), CarryOverAmount: core.Cents(1000)},
		{CategoryID: "food", Month: "2024-12", MonthlyBudget: core.Cents(99999)},
	}
	expenses := []core.Expense{
		expense("food", 6000, 2025, 1, 10),
		expense("food", 500, 2025, 2, 1), // target month, ignored
		expense("fun", 100, 2025, 1, 3),
		expense("rent", 52000, 2025, 1, 1),
	}

	got := CarryOvers("2025-02", monthly, expenses, categories)

	want := map[string]int64{
		"food": 4000, // 100 budget, 60 spent
		"fun":  0,    // carry-over disabled
		"rent": 0,    // overspent, never negative
		"new":  0,    // no row for previous month
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for id, cents := range want {
		if got[id].Cents != cents {
			t.Errorf("%s: expected %d, got %d", id, cents, got[id].Cents)
		}
	}
}

func TestCarryOverAcrossYear(t *testing.T) {
	categories := []core.Category{{ID: "c1", CarryOverEnabled: true}}
	monthly := []core.MonthlyCategory{{CategoryID: "c1", Month: "2024-12", MonthlyBudget: core.Cents(100), CarryOverAmount: core.Cents(50)}}
	got := CarryOvers("2025-01", monthly, nil, categories)
	if got["c1"].Cents != 150 {
		t.Fatalf("expected previous carry-over to roll forward, got %d", got["c1"].Cents)
	}
}

func TestSummarize(t *testing.T) {
	incomes := []core.Income{
		{Amount: core.Cents(300000), Date: core.NewDate(2025, 1, 1)},
		{Amount: core.Cents(50000), Date: core.NewDate(2025, 2, 1)},
	}
	expenses := []core.Expense{
		expense("c1", 8500, 2025, 1, 15),
		expense("c2", 1500, 2025, 1, 20),
		expense("c1", 9999, 2024, 12, 31),
	}
	monthly := []core.MonthlyCategory{
		{CategoryID: "c1", Month: "2025-01", MonthlyBudget: core.Cents(10000), CarryOverAmount: core.Cents(2000)},
		{CategoryID: "c2", Month: "2025-01", MonthlyBudget: core.Cents(5000)},
		{CategoryID: "c1", Month: "2025-02", MonthlyBudget: core.Cents(10000)},
	}
	contributions := []core.SavingsContribution{
		{Amount: core.Cents(20000), Date: core.NewDate(2025, 1, 5)},
	}

	s := Summarize(incomes, expenses, monthly, contributions, "2025-01")

	checks := []struct {
		name string
		got  core.Money
		want int64
	}{
		{"income", s.TotalIncome, 300000},
		{"budgeted", s.TotalBudgeted, 17000},
		{"spent", s.TotalSpent, 10000},
		{"savings", s.SavingsBalance, 20000},
		{"remaining", s.Remaining, 270000},
		{"disposable", s.NetDisposableIncome, 263000},
	}
	for _, c := range checks {
		if c.got.Cents != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got.Cents)
		}
	}
	if s.OverBudget() {
		t.Fatalf("not over budget")
	}
}

func TestCategorySpendingStatus(t *testing.T) {
	cases := []struct {
		name    string
		budget  int64
		spent   int64
		percent float64
		status  Status
	}{
		{"warning at 85", 10000, 8500, 85, StatusWarning},
		{"danger at 120", 10000, 12000, 120, StatusDanger},
		{"boundary 80", 10000, 8000, 80, StatusWarning},
		{"boundary 100", 10000, 10000, 100, StatusDanger},
		{"below 80", 10000, 7999, 79.99, StatusHealthy},
		{"zero budget", 0, 500, 0, StatusHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			monthly := []core.MonthlyCategory{{CategoryID: "c1", CategoryName: "Food", Month: "2025-01", MonthlyBudget: core.Cents(tc.budget)}}
			expenses := []core.Expense{expense("c1", tc.spent, 2025, 1, 15)}
			got := CategorySpending(monthly, expenses, "2025-01")
			if len(got) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(got))
			}
			cs := got[0]
			if diff := cs.Percentage - tc.percent; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected percentage %v, got %v", tc.percent, cs.Percentage)
			}
			if cs.Status != tc.status {
				t.Errorf("expected status %s, got %s", tc.status, cs.Status)
			}
			if cs.Remaining.Cents != tc.budget-tc.spent {
				t.Errorf("unexpected remaining %d", cs.Remaining.Cents)
			}
		})
	}
}

func TestCategorySpendingKeepsRowOrder(t *testing.T) {
	monthly := []core.MonthlyCategory{
		{CategoryID: "b", Month: "2025-01"},
		{CategoryID: "x", Month: "2025-02"},
		{CategoryID: "a", Month: "2025-01"},
	}
	got := CategorySpending(monthly, nil, "2025-01")
	if len(got) != 2 || got[0].CategoryID != "b" || got[1].CategoryID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestIncomeBreakdown(t *testing.T) {
	incomes := []core.Income{
		{SourceID: "s2", SourceName: "Freelance", Amount: core.Cents(2500), Date: core.NewDate(2025, 1, 3)},
		{SourceID: "s1", SourceName: "Salary", Amount: core.Cents(5000), Date: core.NewDate(2025, 1, 1)},
		{SourceID: "s2", SourceName: "Freelance", Amount: core.Cents(2500), Date: core.NewDate(2025, 1, 20)},
		{SourceID: "s1", SourceName: "Salary", Amount: core.Cents(5000), Date: core.NewDate(2025, 2, 1)},
	}
	got := IncomeBreakdown(incomes, "2025-01")
	if len(got) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(got))
	}
	if got[0].SourceID != "s2" || got[0].Amount.Cents != 5000 || got[0].Percentage != 50 {
		t.Fatalf("unexpected first share %+v", got[0])
	}
	if got[1].SourceID != "s1" || got[1].Percentage != 50 {
		t.Fatalf("unexpected second share %+v", got[1])
	}
	if empty := IncomeBreakdown(incomes, "2030-01"); len(empty) != 0 {
		t.Fatalf("expected no shares, got %v", empty)
	}
}

func TestSavingsProgress(t *testing.T) {
	if got := SavingsProgress(core.Cents(10000), core.Cents(2500)); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := SavingsProgress(core.Cents(10000), core.Cents(20000)); got != 100 {
		t.Fatalf("expected cap at 100, got %v", got)
	}
	if got := SavingsProgress(core.Cents(0), core.Cents(20000)); got != 0 {
		t.Fatalf("expected 0 for zero target, got %v", got)
	}
}
