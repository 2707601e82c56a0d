package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
}

func (req budgetRequest) amount() string {
	return strings.Trim(string(req.Amount), `"`)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBudgets(w, r)
	case http.MethodPost:
		s.createBudget(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r, s.now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budgets, err := s.budgets.ListMonth(r.Context(), year, month)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.budgets.Create(r.Context(), core.BudgetInput{
		Amount:   req.amount(),
		Category: req.Category,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		got, err := s.budgets.Get(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, got)

	case http.MethodPut:
		var req budgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := s.budgets.UpdateAmount(r.Context(), id, req.amount())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.invalidateDashboards()
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if _, err := s.budgets.Delete(r.Context(), id); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.invalidateDashboards()
		writeJSON(w, http.StatusOK, messageResponse{Message: "budget deleted"})

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
