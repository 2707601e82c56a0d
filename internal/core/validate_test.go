package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionInputNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      TransactionInput
		wantErr error
	}{
		{
			name: "valid",
			in:   TransactionInput{Amount: "12.34", Date: "2024-06-15", Description: " lunch ", Category: "Food"},
		},
		{
			name: "category defaults to Other",
			in:   TransactionInput{Amount: "5", Date: "2024-06-15", Description: "misc"},
		},
		{
			name:    "missing amount",
			in:      TransactionInput{Date: "2024-06-15", Description: "x", Category: "Food"},
			wantErr: ErrMissingField,
		},
		{
			name:    "non-numeric amount",
			in:      TransactionInput{Amount: "abc", Date: "2024-06-15", Description: "x", Category: "Food"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			in:      TransactionInput{Amount: "0", Date: "2024-06-15", Description: "x", Category: "Food"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			in:      TransactionInput{Amount: "-3", Date: "2024-06-15", Description: "x", Category: "Food"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing date",
			in:      TransactionInput{Amount: "1", Description: "x", Category: "Food"},
			wantErr: ErrMissingField,
		},
		{
			name:    "unparseable date",
			in:      TransactionInput{Amount: "1", Date: "15/06/2024", Description: "x", Category: "Food"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "missing description",
			in:      TransactionInput{Amount: "1", Date: "2024-06-15", Description: "   ", Category: "Food"},
			wantErr: ErrMissingField,
		},
		{
			name:    "unknown category",
			in:      TransactionInput{Amount: "1", Date: "2024-06-15", Description: "x", Category: "Groceries"},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := tt.in.Normalize()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.Description != CleanText(tt.in.Description) {
				t.Fatalf("description not trimmed: %q", tx.Description)
			}
			if tt.in.Category == "" && tx.Category != CategoryOther {
				t.Fatalf("expected default category Other, got %q", tx.Category)
			}
		})
	}
}

func TestTransactionInputNormalizeFields(t *testing.T) {
	tx, err := TransactionInput{Amount: "12.34", Date: "2024-06-15", Description: "lunch", Category: "Food"}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Amount.Cents != 1234 {
		t.Fatalf("amount = %d cents, want 1234", tx.Amount.Cents)
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", tx.Date, want)
	}

	// RFC 3339 timestamps are accepted too.
	tx, err = TransactionInput{Amount: "1", Date: "2024-06-15T08:30:00Z", Description: "bus", Category: "Transportation"}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Date.Hour() != 8 {
		t.Fatalf("timestamp not preserved: %v", tx.Date)
	}
}

func TestBudgetInputNormalize(t *testing.T) {
	now := time.Date(2024, 6, 17, 13, 45, 0, 0, time.UTC)

	b, err := BudgetInput{Amount: "50", Category: "Food"}.Normalize(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Amount.Cents != 5000 {
		t.Fatalf("amount = %d cents, want 5000", b.Amount.Cents)
	}
	if !b.Month.Equal(date(2024, 6, 1)) {
		t.Fatalf("month = %v, want first of June", b.Month)
	}
	if b.Year != 2024 {
		t.Fatalf("year = %d, want 2024", b.Year)
	}

	cases := []struct {
		in   BudgetInput
		want error
	}{
		{BudgetInput{Category: "Food"}, ErrMissingField},
		{BudgetInput{Amount: "x", Category: "Food"}, ErrInvalidAmount},
		{BudgetInput{Amount: "0", Category: "Food"}, ErrInvalidAmount},
		{BudgetInput{Amount: "50"}, ErrMissingField},
		{BudgetInput{Amount: "50", Category: "nope"}, ErrInvalidCategory},
	}
	for i, tc := range cases {
		if _, err := tc.in.Normalize(now); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	m, err := ParseAmount("19.99")
	if err != nil || m.Cents != 1999 {
		t.Fatalf("ParseAmount = %d, %v", m.Cents, err)
	}
	if _, err := ParseAmount(""); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := ParseAmount("-1"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("CleanText = %q", got)
	}
	if got := CleanText("a\tb"); got != "a\tb" {
		t.Fatalf("tab should survive, got %q", got)
	}
}
