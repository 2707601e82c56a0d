// Package http serves the JSON API: transaction and budget CRUD,
// category metadata, and dashboard aggregates.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type Server struct {
	http.Server

	transactions *services.TransactionService
	budgets      *services.BudgetService
	store        *storage.Store
	logger       *log.Logger

	rateLimiter *rateLimiter

	// Dashboard responses are cached between writes.
	summaryCache *cache.LRU[DashboardSummary]
	reportCache  *cache.LRU[[]core.BudgetStatus]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once

	now func() time.Time
}

// NewServer configures routes and middleware, returning a
// ready-to-run server. Timeouts are the caller's to set on the
// embedded http.Server.
func NewServer(addr string, tx *services.TransactionService, budgets *services.BudgetService, store *storage.Store, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions:     tx,
		budgets:          budgets,
		store:            store,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.New[DashboardSummary](16, 5*time.Minute),
		reportCache:      cache.New[[]core.BudgetStatus](16, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
		now:              time.Now,
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withMiddleware(s.handleTransactionByID))
	mux.HandleFunc("/api/budgets", s.withMiddleware(s.handleBudgets))
	mux.HandleFunc("/api/budgets/", s.withMiddleware(s.handleBudgetByID))
	mux.HandleFunc("/api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("/api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("/api/dashboard/budgets", s.withMiddleware(s.handleDashboardBudgets))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	return s
}

// withMiddleware adds request IDs, request logging, rate limiting for
// mutating methods, and baseline security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.summaryCache.CleanExpired() + s.reportCache.CleanExpired()
			if cleaned > 0 {
				s.logger.Debug("cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateDashboards drops cached aggregates after any write.
func (s *Server) invalidateDashboards() {
	s.summaryCache.Purge()
	s.reportCache.Purge()
}

// Shutdown stops the background goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "readiness check failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
