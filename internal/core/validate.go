package core

import (
	"strings"
	"time"
)

// TransactionInput is a raw candidate record as received from a client:
// every field still in its string representation.
type TransactionInput struct {
	Amount      string
	Date        string
	Description string
	Category    string
}

// BudgetInput is a raw candidate budget. Category is required on
// create; updates carry only the amount.
type BudgetInput struct {
	Amount   string
	Category string
}

// Normalize validates the raw input and produces a typed Transaction
// with normalized fields. The returned record has no ID or timestamps;
// those belong to the storage layer. The first violated rule wins, no
// partial acceptance.
func (in TransactionInput) Normalize() (Transaction, error) {
	var t Transaction

	if strings.TrimSpace(in.Amount) == "" {
		return t, invalid("amount", ErrMissingField)
	}
	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return t, invalid("amount", ErrInvalidAmount)
	}

	if strings.TrimSpace(in.Date) == "" {
		return t, invalid("date", ErrMissingField)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return t, invalid("date", ErrInvalidDate)
	}

	desc := CleanText(in.Description)
	if desc == "" {
		return t, invalid("description", ErrMissingField)
	}

	// Absent category falls back to the entity default.
	cat := strings.TrimSpace(in.Category)
	if cat == "" {
		cat = string(CategoryOther)
	}
	if !ValidCategory(cat) {
		return t, invalid("category", ErrInvalidCategory)
	}

	t = Transaction{
		Amount:      Money{Cents: cents},
		Date:        date,
		Description: desc,
		Category:    Category(cat),
	}
	return t, t.Validate()
}

// Normalize validates the raw input and produces a typed Budget scoped
// to the month containing now.
func (in BudgetInput) Normalize(now time.Time) (Budget, error) {
	var b Budget

	if strings.TrimSpace(in.Amount) == "" {
		return b, invalid("amount", ErrMissingField)
	}
	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return b, invalid("amount", ErrInvalidAmount)
	}

	cat := strings.TrimSpace(in.Category)
	if cat == "" {
		return b, invalid("category", ErrMissingField)
	}
	if !ValidCategory(cat) {
		return b, invalid("category", ErrInvalidCategory)
	}

	b = Budget{
		Category: Category(cat),
		Amount:   Money{Cents: cents},
		Month:    MonthOf(now),
		Year:     now.Year(),
	}
	return b, b.Validate()
}

// ParseAmount validates a bare amount field, used by budget updates
// where only the amount is mutable.
func ParseAmount(raw string) (Money, error) {
	if strings.TrimSpace(raw) == "" {
		return Money{}, invalid("amount", ErrMissingField)
	}
	cents, err := ParseDecimalToCents(raw)
	if err != nil {
		return Money{}, invalid("amount", ErrInvalidAmount)
	}
	return Money{Cents: cents}, nil
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC 3339
// timestamp. No validity range is imposed beyond a successful parse.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// CleanText trims whitespace and strips control characters except tab,
// newline, and carriage return.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
