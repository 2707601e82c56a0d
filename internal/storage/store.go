// Package storage implements the persistence gateway on SQLite.
//
// Records are keyed by opaque UUID identifiers assigned on creation.
// The budget uniqueness invariant (one budget per category and month)
// is enforced here by a unique index and surfaced as ErrDuplicateBudget.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBudget is returned when a budget already exists for
	// the same (category, month) pair.
	ErrDuplicateBudget = errors.New("budget already exists for this category and month")
)

// Store is the SQLite-backed persistence gateway. One Store per
// process, constructed explicitly and closed on shutdown.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// TransactionFilter narrows ListTransactions. Zero values mean "no
// constraint" for their field.
type TransactionFilter struct {
	Category string
	From     time.Time
	To       time.Time
}

// CreateTransaction assigns an id and timestamps and stores the record.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount_cents, date, description, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, t.Date.Unix(), t.Description, string(t.Category),
		now.Unix(), now.Unix())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, date, description, category, created_at, updated_at
		 FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListTransactions returns matching transactions ordered by date
// descending, newest creation first among equal dates.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	q := `SELECT id, amount_cents, date, description, category, created_at, updated_at
	      FROM transactions`
	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.Unix())
	}
	if !f.To.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, f.To.Unix())
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction replaces every mutable field of the record.
func (s *Store) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount_cents = ?, date = ?, description = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		t.Amount.Cents, t.Date.Unix(), t.Description, string(t.Category), now.Unix(), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	} else if n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return s.GetTransaction(ctx, id)
}

// DeleteTransaction removes the record and returns it.
func (s *Store) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	return t, nil
}

// CreateBudget stores a new budget, rejecting duplicates for the same
// (category, month) pair.
func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category, amount_cents, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Category), b.Amount.Cents, monthKey(b.Month), b.Year,
		now.Unix(), now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, ErrDuplicateBudget
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (s *Store) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, amount_cents, month, year, created_at, updated_at
		 FROM budgets WHERE id = ?`, id)
	return scanBudget(row)
}

// ListBudgetsForMonth returns every budget scoped to the given
// calendar month.
func (s *Store) ListBudgetsForMonth(ctx context.Context, year, month int) ([]core.Budget, error) {
	key := monthKey(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, month, year, created_at, updated_at
		 FROM budgets WHERE month = ? ORDER BY category`, key)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBudgetAmount changes the amount; every other field is immutable.
func (s *Store) UpdateBudgetAmount(ctx context.Context, id string, amount core.Money) (core.Budget, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = ?, updated_at = ? WHERE id = ?`,
		amount.Cents, now.Unix(), id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	} else if n == 0 {
		return core.Budget{}, ErrNotFound
	}
	return s.GetBudget(ctx, id)
}

// DeleteBudget removes the record and returns it.
func (s *Store) DeleteBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := s.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id); err != nil {
		return core.Budget{}, fmt.Errorf("delete budget: %w", err)
	}
	return b, nil
}

// AuditEvent is one row of the audit trail maintained by the worker.
type AuditEvent struct {
	ID         int64
	Entity     string
	EntityID   string
	Action     string
	OccurredAt time.Time
}

func (s *Store) AppendAuditEvent(ctx context.Context, e AuditEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (entity, entity_id, action, occurred_at) VALUES (?, ?, ?, ?)`,
		e.Entity, e.EntityID, e.Action, e.OccurredAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the most recent audit rows, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, limit int) ([]AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity, entity_id, action, occurred_at
		 FROM audit_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var occurred int64
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &occurred); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.OccurredAt = time.Unix(occurred, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var date, created, updated int64
	var category string
	err := row.Scan(&t.ID, &t.Amount.Cents, &date, &t.Description, &category, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Date = time.Unix(date, 0).UTC()
	t.Category = core.Category(category)
	t.CreatedAt = time.Unix(created, 0).UTC()
	t.UpdatedAt = time.Unix(updated, 0).UTC()
	return t, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var month, category string
	var created, updated int64
	err := row.Scan(&b.ID, &category, &b.Amount.Cents, &month, &b.Year, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.Category = core.Category(category)
	m, err := time.Parse("2006-01", month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget month %q: %w", month, err)
	}
	b.Month = m
	b.CreatedAt = time.Unix(created, 0).UTC()
	b.UpdatedAt = time.Unix(updated, 0).UTC()
	return b, nil
}

// monthKey renders the first-of-month date as the uniqueness key.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
