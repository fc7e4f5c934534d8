package http

import (
	"net/http"

	"housebudget/internal/ledger"
	"housebudget/internal/transactions"
)

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var in ledger.IncomeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	inc, err := s.svc.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inc)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var p ledger.IncomePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	inc, err := s.svc.UpdateIncome(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIncome(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in ledger.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.svc.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var p ledger.ExpensePatch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.svc.UpdateExpense(r.Context(), urlID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), urlID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

type transactionList struct {
	Transactions []transactions.Transaction `json:"transactions"`
	Stats        transactions.Stats         `json:"stats"`
	Sort         transactions.Sort          `json:"sort"`
}

// handleTransactions lists incomes and expenses as one filtered, sorted
// list with totals over the listed rows.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f, sort, err := ParseTransactionQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap := s.svc.Fresh(r.Context())
	list := transactions.Apply(transactions.Combine(snap.Incomes, snap.Expenses), f)
	list, err = transactions.Sorted(list, sort)
	if err != nil {
		writeError(w, r, badRequest("%v", err))
		return
	}
	writeJSON(w, http.StatusOK, transactionList{
		Transactions: list,
		Stats:        transactions.Summarize(list),
		Sort:         sort,
	})
}

func (s *Server) handleTransactionOptions(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Fresh(r.Context())
	writeJSON(w, http.StatusOK, transactions.FilterOptions(
		snap.Incomes, snap.Expenses, snap.Categories, snap.IncomeSources, snap.Members))
}
