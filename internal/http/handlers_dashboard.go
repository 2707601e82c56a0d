package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// DashboardSummary is the aggregate view backing the dashboard.
type DashboardSummary struct {
	Total              core.Money           `json:"total"`
	Count              int                  `json:"count"`
	Average            core.Money           `json:"average"`
	CategoryTotals     []core.CategoryTotal `json:"categoryTotals"`
	MonthlyTotals      []core.MonthTotal    `json:"monthlyTotals"`
	RecentTransactions []core.Transaction   `json:"recentTransactions"`
}

type categoryInfo struct {
	Name  core.Category `json:"name"`
	Color string        `json:"color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	cats := core.Categories()
	out := make([]categoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryInfo{Name: c, Color: core.CategoryColors[c]})
	}
	writeJSON(w, http.StatusOK, out)
}

const dashboardSummaryKey = "summary"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if summary, ok := s.summaryCache.Get(dashboardSummaryKey); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	txs, err := s.transactions.List(r.Context(), storage.TransactionFilter{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	recent := core.MostRecent(txs, 5)
	if recent == nil {
		recent = []core.Transaction{}
	}
	summary := DashboardSummary{
		Total:              core.Total(txs),
		Count:              len(txs),
		Average:            core.Average(txs),
		CategoryTotals:     core.CategoryTotals(txs),
		MonthlyTotals:      core.MonthlyTotals(txs),
		RecentTransactions: recent,
	}
	if summary.CategoryTotals == nil {
		summary.CategoryTotals = []core.CategoryTotal{}
	}
	if summary.MonthlyTotals == nil {
		summary.MonthlyTotals = []core.MonthTotal{}
	}

	s.summaryCache.Set(dashboardSummaryKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleDashboardBudgets reports budget versus actual spending for the
// current month, one row per category.
func (s *Server) handleDashboardBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%d-%02d", now.Year(), int(now.Month()))

	if report, ok := s.reportCache.Get(key); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}

	budgets, err := s.budgets.ListMonth(r.Context(), now.Year(), int(now.Month()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := core.MonthOf(now)
	txs, err := s.transactions.List(r.Context(), storage.TransactionFilter{
		From: start,
		To:   start.AddDate(0, 1, 0),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report := core.CompareBudgets(budgets, txs)
	s.reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}
