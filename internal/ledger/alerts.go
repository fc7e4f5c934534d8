package ledger

import "housebudget/internal/core"

func alertID(a core.Alert) string { return a.ID }

// AddAlerts stamps and appends alerts, skipping any whose type and category
// already have an active alert. It returns the alerts actually added.
func AddAlerts(l Ledger, env Env, alerts []core.Alert) (Ledger, []core.Alert) {
	var added []core.Alert
	for _, a := range alerts {
		if hasActiveAlert(l.Alerts, a) || hasActiveAlert(added, a) {
			continue
		}
		a.ID = env.id(a.ID)
		a.CreatedAt = env.now()
		a.Dismissed = false
		added = append(added, a)
	}
	if len(added) == 0 {
		return l, nil
	}
	out := l
	out.Alerts = appended(l.Alerts, added...)
	return out, added
}

// DismissAlert marks an alert dismissed. A later breach of the same kind
// raises a fresh alert.
func DismissAlert(l Ledger, id string) (Ledger, error) {
	i := indexByID(l.Alerts, id, alertID)
	if i < 0 {
		return l, notFound("alert", id)
	}
	a := l.Alerts[i]
	a.Dismissed = true
	out := l
	out.Alerts = replaced(l.Alerts, i, a)
	return out, nil
}

func hasActiveAlert(alerts []core.Alert, a core.Alert) bool {
	for _, e := range alerts {
		if e.Active() && e.Type == a.Type && e.CategoryID == a.CategoryID {
			return true
		}
	}
	return false
}
