package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := log.New(log.DefaultConfig())
	tx := services.NewTransactionService(store, nil, logger)
	budgets := services.NewBudgetService(store, nil, logger)

	s := NewServer(":0", tx, budgets, store, logger)
	t.Cleanup(func() {
		s.rateLimiter.stop()
		close(s.stopCacheCleanup)
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createTransaction(t *testing.T, s *Server, amount, date, desc, category string) core.Transaction {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"amount": amount, "date": date, "description": desc, "category": category,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[core.Transaction](t, rec)
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"amount":      12.5,
		"date":        "2024-03-05",
		"description": "groceries",
		"category":    "Food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	created := decode[core.Transaction](t, rec)
	if created.ID == "" {
		t.Fatal("id missing in response")
	}
	if created.Amount.Cents != 1250 || created.Category != core.CategoryFood {
		t.Fatalf("created = %+v", created)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing amount", map[string]string{"date": "2024-03-05", "description": "x"}},
		{"zero amount", map[string]string{"amount": "0", "date": "2024-03-05", "description": "x"}},
		{"negative amount", map[string]string{"amount": "-5", "date": "2024-03-05", "description": "x"}},
		{"bad date", map[string]string{"amount": "1", "date": "soon", "description": "x"}},
		{"empty description", map[string]string{"amount": "1", "date": "2024-03-05", "description": "  "}},
		{"unknown category", map[string]string{"amount": "1", "date": "2024-03-05", "description": "x", "category": "Vices"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			resp := decode[map[string]string](t, rec)
			if resp["error"] == "" {
				t.Fatal("error message missing")
			}
		})
	}
}

func TestTransactionDefaultCategory(t *testing.T) {
	s := newTestServer(t)

	created := createTransaction(t, s, "5", "2024-03-05", "misc", "")
	if created.Category != core.CategoryOther {
		t.Fatalf("category = %s, want Other", created.Category)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)

	created := createTransaction(t, s, "10", "2024-03-05", "before", "Food")

	rec := doJSON(t, s, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/"+created.ID, map[string]string{
		"amount": "20", "date": "2024-03-06", "description": "after", "category": "Shopping",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[core.Transaction](t, rec)
	if updated.Amount.Cents != 2000 || updated.Description != "after" {
		t.Fatalf("updated = %+v", updated)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestTransactionNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, s, method, "/api/transactions/no-such-id", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s status = %d, want 404", method, rec.Code)
		}
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestServer(t)

	createTransaction(t, s, "30", "2024-03-01", "lunch", "Food")
	createTransaction(t, s, "5", "2024-03-10", "bus", "Transportation")
	createTransaction(t, s, "20", "2024-04-01", "dinner", "Food")

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	all := decode[[]core.Transaction](t, rec)
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Date descending.
	if !all[0].Date.After(all[1].Date) || !all[1].Date.After(all[2].Date) {
		t.Fatal("transactions not sorted by date desc")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?category=Food", nil)
	food := decode[[]core.Transaction](t, rec)
	if len(food) != 2 {
		t.Fatalf("food len = %d, want 2", len(food))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?from=2024-03-05&to=2024-03-15", nil)
	ranged := decode[[]core.Transaction](t, rec)
	if len(ranged) != 1 || ranged[0].Description != "bus" {
		t.Fatalf("ranged = %+v", ranged)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?category=Nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad category status = %d", rec.Code)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/budgets", map[string]string{
		"amount": "500", "category": "Food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Budget](t, rec)
	if created.ID == "" || created.Amount.Cents != 50000 {
		t.Fatalf("created = %+v", created)
	}
	now := time.Now().UTC()
	if created.Month.Month() != now.Month() || created.Year != now.Year() {
		t.Fatalf("budget not scoped to current month: %+v", created)
	}

	// Duplicate category in the same month conflicts.
	rec = doJSON(t, s, http.MethodPost, "/api/budgets", map[string]string{
		"amount": "600", "category": "Food",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budgets", nil)
	listed := decode[[]core.Budget](t, rec)
	if len(listed) != 1 {
		t.Fatalf("listed len = %d, want 1", len(listed))
	}

	rec = doJSON(t, s, http.MethodPut, "/api/budgets/"+created.ID, map[string]string{
		"amount": "750.25",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[core.Budget](t, rec)
	if updated.Amount.Cents != 75025 {
		t.Fatalf("updated amount = %d", updated.Amount.Cents)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/budgets/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/budgets/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestBudgetValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing amount", map[string]string{"category": "Food"}},
		{"zero amount", map[string]string{"amount": "0", "category": "Food"}},
		{"missing category", map[string]string{"amount": "100"}},
		{"unknown category", map[string]string{"amount": "100", "category": "Vices"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/budgets", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cats := decode[[]categoryInfo](t, rec)
	if len(cats) != 10 {
		t.Fatalf("len = %d, want 10", len(cats))
	}
	if cats[0].Name != core.CategoryFood || cats[0].Color == "" {
		t.Fatalf("cats[0] = %+v", cats[0])
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	createTransaction(t, s, "10", "2024-03-01", "a", "Food")
	createTransaction(t, s, "20", "2024-03-02", "b", "Food")
	createTransaction(t, s, "5", "2024-02-01", "c", "Other")

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	summary := decode[DashboardSummary](t, rec)

	if summary.Count != 3 {
		t.Fatalf("count = %d, want 3", summary.Count)
	}
	if summary.Total.Cents != 3500 {
		t.Fatalf("total = %d, want 3500", summary.Total.Cents)
	}
	if summary.Average.Cents != 1166 {
		t.Fatalf("average = %d, want 1166", summary.Average.Cents)
	}
	if len(summary.RecentTransactions) != 3 {
		t.Fatalf("recent len = %d", len(summary.RecentTransactions))
	}
	if summary.RecentTransactions[0].Description != "b" {
		t.Fatalf("most recent = %+v", summary.RecentTransactions[0])
	}

	var food int64
	for _, ct := range summary.CategoryTotals {
		if ct.Category == core.CategoryFood {
			food = ct.Total.Cents
		}
	}
	if food != 3000 {
		t.Fatalf("food total = %d, want 3000", food)
	}
	if len(summary.MonthlyTotals) != 2 {
		t.Fatalf("monthly len = %d, want 2", len(summary.MonthlyTotals))
	}
}

func TestDashboardCacheInvalidation(t *testing.T) {
	s := newTestServer(t)

	createTransaction(t, s, "10", "2024-03-01", "a", "Food")

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	first := decode[DashboardSummary](t, rec)
	if first.Count != 1 {
		t.Fatalf("count = %d, want 1", first.Count)
	}

	// A write must drop the cached summary.
	createTransaction(t, s, "20", "2024-03-02", "b", "Food")

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	second := decode[DashboardSummary](t, rec)
	if second.Count != 2 {
		t.Fatalf("count after write = %d, want 2", second.Count)
	}
}

func TestDashboardBudgets(t *testing.T) {
	s := newTestServer(t)

	today := time.Now().UTC().Format("2006-01-02")
	createTransaction(t, s, "30", today, "groceries", "Food")

	rec := doJSON(t, s, http.MethodPost, "/api/budgets", map[string]string{
		"amount": "50", "category": "Food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("budget create status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard/budgets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	report := decode[[]core.BudgetStatus](t, rec)
	if len(report) != 10 {
		t.Fatalf("report len = %d, want one row per category", len(report))
	}

	var food core.BudgetStatus
	for _, row := range report {
		if row.Category == core.CategoryFood {
			food = row
		}
	}
	if food.Budget.Cents != 5000 || food.Actual.Cents != 3000 || food.Remaining.Cents != 2000 {
		t.Fatalf("food row = %+v", food)
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestReadyFailsWhenDBClosed(t *testing.T) {
	s := newTestServer(t)
	s.store.Close()

	rec := doJSON(t, s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodDelete, "/api/transactions", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow == "" {
		t.Fatal("Allow header missing")
	}
}

func TestRateLimitMutatingRequests(t *testing.T) {
	s := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		last = doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
			"amount": fmt.Sprintf("%d", i+1), "date": "2024-03-01", "description": "x",
		})
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", last.Header().Get("Retry-After"))
	}

	// Reads are not limited.
	rec := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want 200", rec.Code)
	}
}
