package budget

import (
	"fmt"

	"housebudget/internal/core"
)

const totalExceededMessage = "Total spending has exceeded your planned monthly budget. Consider adjusting expenses or increasing budgets."

// CheckAlerts returns the alerts that the current figures call for and that
// are not already active in existing.
//
// The returned alerts have no ID or CreatedAt; the ledger stamps them when it
// appends them. Calling again with the returned alerts appended to existing
// yields nothing new.
func CheckAlerts(spending []CategorySpend, summary Summary, existing []core.Alert, currency core.Currency) []core.Alert {
	var out []core.Alert

	for _, cs := range spending {
		exceededActive := hasActive(existing, core.AlertCategoryExceeded, cs.CategoryID)
		warningActive := hasActive(existing, core.AlertCategoryWarning, cs.CategoryID)

		switch {
		case cs.Exceeded():
			if exceededActive {
				continue
			}
			out = append(out, core.Alert{
				Type:       core.AlertCategoryExceeded,
				Severity:   core.SeverityDanger,
				CategoryID: cs.CategoryID,
				Message: fmt.Sprintf("You've exceeded your budget for %s. Spent %s of %s.",
					cs.CategoryName, currency.Format(cs.Spent), currency.Format(cs.Budget)),
			})
		case cs.Warning() && !warningActive && !exceededActive:
			out = append(out, core.Alert{
				Type:       core.AlertCategoryWarning,
				Severity:   core.SeverityWarning,
				CategoryID: cs.CategoryID,
				Message: fmt.Sprintf("You're approaching your budget limit for %s. %s remaining.",
					cs.CategoryName, currency.Format(cs.Remaining)),
			})
		}
	}

	if summary.OverBudget() && !hasActiveType(existing, core.AlertTotalExceeded) {
		out = append(out, core.Alert{
			Type:     core.AlertTotalExceeded,
			Severity: core.SeverityDanger,
			Message:  totalExceededMessage,
		})
	}
	return out
}

func hasActive(alerts []core.Alert, typ core.AlertType, categoryID string) bool {
	for _, a := range alerts {
		if a.Active() && a.Type == typ && a.CategoryID == categoryID {
			return true
		}
	}
	return false
}

func hasActiveType(alerts []core.Alert, typ core.AlertType) bool {
	for _, a := range alerts {
		if a.Active() && a.Type == typ {
			return true
		}
	}
	return false
}
