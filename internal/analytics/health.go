package analytics

import (
	"fmt"

	"housebudget/internal/budget"
)

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
)

type HealthStatus string

// Health is the budget health score of a month with the reasons behind it.
type Health struct {
	Score   int          `json:"score"`
	Status  HealthStatus `json:"status"`
	Factors []string     `json:"factors"`
}

// HealthScore starts at 100 and deducts for overall overspending, for every
// overspent category and for a low savings rate. The result is clamped to
// [0, 100] before the status band is chosen.
func HealthScore(summary budget.Summary, spending []budget.CategorySpend) Health {
	score := 100
	factors := make([]string, 0, 3)

	if budgeted := summary.TotalBudgeted.Cents; budgeted > 0 {
		spent := summary.TotalSpent.Cents
		switch {
		case spent > budgeted:
			score -= 30
			factors = append(factors, "Over budget")
		case spent*10 > budgeted*9:
			score -= 15
			factors = append(factors, "Approaching budget limit")
		default:
			factors = append(factors, "Within budget")
		}
	}

	over := 0
	for _, cs := range spending {
		if cs.Overspent() {
			over++
		}
	}
	if over > 0 {
		score -= over * 10
		factors = append(factors, fmt.Sprintf("%d categories over budget", over))
	}

	if income := summary.TotalIncome.Cents; income > 0 {
		remaining := summary.Remaining.Cents
		switch {
		case remaining*5 >= income:
			factors = append(factors, "Good savings rate (20%+)")
		case remaining*10 >= income:
			score -= 10
			factors = append(factors, "Low savings rate (10-20%)")
		default:
			score -= 25
			factors = append(factors, "Poor savings rate (<10%)")
		}
	}

	score = max(0, min(score, 100))
	return Health{Score: score, Status: band(score), Factors: factors}
}

func band(score int) HealthStatus {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthGood
	case score >= 40:
		return HealthFair
	default:
		return HealthPoor
	}
}
