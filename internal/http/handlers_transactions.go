package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// transactionRequest is the JSON body for create and update. Amount is
// raw so clients may send either a number or a quoted decimal string.
type transactionRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

func (req transactionRequest) input() core.TransactionInput {
	return core.TransactionInput{
		Amount:      strings.Trim(string(req.Amount), `"`),
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	var filter storage.TransactionFilter

	if v := strings.TrimSpace(r.URL.Query().Get("category")); v != "" {
		if !core.ValidCategory(v) {
			writeError(w, http.StatusBadRequest, "invalid category parameter")
			return
		}
		filter.Category = v
	}
	if v := r.URL.Query().Get("from"); v != "" {
		from, err := parseDateParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from parameter")
			return
		}
		filter.From = from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := parseDateParam(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to parameter")
			return
		}
		// Inclusive upper bound: cover the whole named day.
		filter.To = to.AddDate(0, 0, 1)
	}

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.transactions.Create(r.Context(), req.input())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.invalidateDashboards()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		got, err := s.transactions.Get(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, got)

	case http.MethodPut:
		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := s.transactions.Update(r.Context(), id, req.input())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.invalidateDashboards()
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if _, err := s.transactions.Delete(r.Context(), id); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.invalidateDashboards()
		writeJSON(w, http.StatusOK, messageResponse{Message: "transaction deleted"})

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
