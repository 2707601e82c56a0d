package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Money is an amount in integer cents. Calculations stay in cents;
	// only the JSON encoding uses the decimal representation.
	Money struct {
		Cents int64
	}

	// Transaction is a single recorded expense. ID is assigned by the
	// storage layer on creation and immutable thereafter.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Budget is a per-category spending limit for one calendar month.
	// Month is always the first day of the target month, UTC.
	Budget struct {
		ID        string    `json:"id"`
		Category  Category  `json:"category"`
		Amount    Money     `json:"amount"`
		Month     time.Time `json:"month"`
		Year      int       `json:"year"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// ValidationError classifies the first rule a candidate record violated.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if t.Date.IsZero() {
		return invalid("date", ErrMissingField)
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalid("description", ErrMissingField)
	}
	if len(t.Description) > 200 {
		return invalid("description", errors.New("too long (max 200 characters)"))
	}
	if !ValidCategory(string(t.Category)) {
		return invalid("category", ErrInvalidCategory)
	}
	return nil
}

func (b Budget) Validate() error {
	if !ValidCategory(string(b.Category)) {
		return invalid("category", ErrInvalidCategory)
	}
	if err := b.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if b.Month.IsZero() {
		return invalid("month", ErrMissingField)
	}
	return nil
}

// MonthOf normalizes t to the first day of its calendar month, UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
