package http

import (
	"net/http"

	"housebudget/internal/ledger"
)

func (s *Server) handleAddSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var in ledger.SavingsGoalInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.AddSavingsGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.ProgressOf(g))
}

func (s *Server) savingsGoals(_ *http.Request, snap ledger.Ledger) (any, error) {
	return snap.GoalsProgress(), nil
}

// handleAddContribution answers with the goal after the contribution.
func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var in ledger.ContributionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.GoalID = urlID(r)
	g, err := s.svc.AddSavingsContribution(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger.ProgressOf(g))
}

// handleAlerts lists active alerts, or every stored alert with ?all=true.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Fresh(r.Context())
	if parseBool(r.URL.Query(), "all") {
		writeJSON(w, http.StatusOK, snap.Alerts)
		return
	}
	writeJSON(w, http.StatusOK, snap.ActiveAlerts())
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DismissAlert(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}
