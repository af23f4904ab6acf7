package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 9 {
		t.Fatalf("unexpected date: %v", d)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("round trip mismatch: %q", d.String())
	}

	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{
		Date:     NewDate(2025, 1, 1),
		Amount:   Money{Cents: 100},
		Category: "Groceries",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Zero amount and empty description are both valid.
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount expected ok, got %v", err)
	}

	bads := []ExpenseRecord{
		{Amount: Money{Cents: 1}, Category: "c"},                                          // zero date
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: -1}, Category: "c"},              // negative amount
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: ""},                // empty category
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "c", Description: strings.Repeat("x", 201)},
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: error %v does not wrap ErrValidation", i, err)
		}
	}
}
