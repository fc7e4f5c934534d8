package http

import (
	"net/http"

	"housebudget/internal/ledger"
)

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Fresh(r.Context()))
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var in ledger.Onboarding
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.svc.CompleteOnboarding(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleSetCurrentMonth(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Month string `json:"month"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := s.svc.SetCurrentMonth(r.Context(), sanitizeInput(in.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currentMonth": l.CurrentMonth})
}

func (s *Server) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	h := s.svc.Fresh(r.Context()).Household
	if h == nil {
		writeError(w, r, ledger.ErrNoHousehold)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleSetHousehold(w http.ResponseWriter, r *http.Request) {
	var in ledger.HouseholdInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	h, err := s.svc.SetHousehold(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var in ledger.MemberInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.AddMember(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var p ledger.MemberPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.UpdateMember(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMember(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func (s *Server) handleAddIncomeSource(w http.ResponseWriter, r *http.Request) {
	var in ledger.IncomeSourceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	src, err := s.svc.AddIncomeSource(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (s *Server) handleUpdateIncomeSource(w http.ResponseWriter, r *http.Request) {
	var p ledger.IncomeSourcePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	src, err := s.svc.UpdateIncomeSource(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (s *Server) handleDeleteIncomeSource(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIncomeSource(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in ledger.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.AddCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p ledger.CategoryPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.UpdateCategory(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCategory(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func (s *Server) handleAddMonthlyCategory(w http.ResponseWriter, r *http.Request) {
	var in ledger.MonthlyCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	mc, err := s.svc.AddMonthlyCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mc)
}

func (s *Server) handleUpdateMonthlyCategory(w http.ResponseWriter, r *http.Request) {
	var p ledger.MonthlyCategoryPatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	mc, err := s.svc.UpdateMonthlyCategory(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mc)
}

// handleMaterializeMonth creates the month's category budgets from the
// templates plus carry-over.
func (s *Server) handleMaterializeMonth(w http.ResponseWriter, r *http.Request) {
	m, err := urlMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.svc.MaterializeMonth(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rows)
}
