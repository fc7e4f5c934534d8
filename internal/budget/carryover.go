// Package budget derives month-level budget figures from ledger records:
// carry-over into a new month, the month summary, per-category spending and
// the alerts raised from them. Every function is pure.
package budget

import (
	"housebudget/internal/core"
	"housebudget/internal/month"
)

// CarryOvers computes, per category template, the unused budget of the month
// before target that rolls into target.
//
// A category carries nothing when it has no row for the previous month, when
// carry-over is disabled on the template, or when the previous month ended at
// or below zero. Overspending never reduces the next month.
func CarryOvers(target string, monthly []core.MonthlyCategory, expenses []core.Expense, categories []core.Category) map[string]core.Money {
	prev := month.Previous(target)
	out := make(map[string]core.Money, len(categories))

	for _, cat := range categories {
		row, ok := findMonthly(monthly, cat.ID, prev)
		if !ok {
			out[cat.ID] = core.Money{}
			continue
		}
		remaining := row.EffectiveBudget().Sub(spentIn(expenses, cat.ID, prev))
		if cat.CarryOverEnabled && remaining.IsPositive() {
			out[cat.ID] = remaining
		} else {
			out[cat.ID] = core.Money{}
		}
	}
	return out
}

func findMonthly(monthly []core.MonthlyCategory, categoryID, m string) (core.MonthlyCategory, bool) {
	for _, mc := range monthly {
		if mc.CategoryID == categoryID && mc.Month == m {
			return mc, true
		}
	}
	return core.MonthlyCategory{}, false
}

func spentIn(expenses []core.Expense, categoryID, m string) core.Money {
	var total core.Money
	for _, e := range expenses {
		if e.CategoryID == categoryID && e.Date.InMonth(m) {
			total = total.Add(e.Amount)
		}
	}
	return total
}
