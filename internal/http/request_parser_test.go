package http

import (
	"errors"
	"net/url"
	"testing"

	"finsmart/internal/core"
)

func TestParseFilterQuery(t *testing.T) {
	t.Run("no parameters matches everything", func(t *testing.T) {
		q, err := parseFilterQuery(url.Values{})
		if err != nil {
			t.Fatal(err)
		}
		if !q.Categories.All {
			t.Error("absent category parameters should mean all categories")
		}
		if !q.From.IsZero() || !q.To.IsZero() {
			t.Error("absent bounds should stay open")
		}
	})

	t.Run("date range", func(t *testing.T) {
		q, err := parseFilterQuery(url.Values{
			"from": {"2025-01-01"},
			"to":   {"2025-01-31"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if q.From.String() != "2025-01-01" || q.To.String() != "2025-01-31" {
			t.Errorf("unexpected range: %s..%s", q.From, q.To)
		}
	})

	t.Run("repeated category parameters", func(t *testing.T) {
		q, err := parseFilterQuery(url.Values{
			"category": {"Groceries", "Other"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if q.Categories.All || len(q.Categories.Names) != 2 {
			t.Errorf("unexpected selection: %+v", q.Categories)
		}
	})

	t.Run("comma separated categories", func(t *testing.T) {
		q, err := parseFilterQuery(url.Values{
			"categories": {"Groceries, Other"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(q.Categories.Names) != 2 || q.Categories.Names[1] != "Other" {
			t.Errorf("unexpected selection: %+v", q.Categories)
		}
	})

	t.Run("present but empty selection matches nothing", func(t *testing.T) {
		q, err := parseFilterQuery(url.Values{"categories": {""}})
		if err != nil {
			t.Fatal(err)
		}
		if q.Categories.All {
			t.Error("an explicit empty selection must not widen to all categories")
		}
		if len(q.Categories.Names) != 0 {
			t.Errorf("expected no names, got %v", q.Categories.Names)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := parseFilterQuery(url.Values{"from": {"01/02/2025"}})
		if !errors.Is(err, core.ErrInvalidDate) {
			t.Errorf("expected invalid date error, got %v", err)
		}
	})
}

func TestParseExpenseForm(t *testing.T) {
	t.Run("full form", func(t *testing.T) {
		date, amount, category, description, err := parseExpenseForm(url.Values{
			"date":        {"2025-03-01"},
			"amount":      {"12,34"},
			"category":    {"  Groceries  "},
			"description": {"weekly shop"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if date.String() != "2025-03-01" {
			t.Errorf("unexpected date: %s", date)
		}
		if amount.Cents != 1234 {
			t.Errorf("expected 1234 cents, got %d", amount.Cents)
		}
		if category != "Groceries" || description != "weekly shop" {
			t.Errorf("unexpected fields: %q %q", category, description)
		}
	})

	t.Run("empty date defaults to today", func(t *testing.T) {
		date, _, _, _, err := parseExpenseForm(url.Values{
			"amount":   {"1.00"},
			"category": {"Other"},
		})
		if err != nil {
			t.Fatal(err)
		}
		if date.String() != core.Today().String() {
			t.Errorf("expected today, got %s", date)
		}
	})

	t.Run("bad amount", func(t *testing.T) {
		_, _, _, _, err := parseExpenseForm(url.Values{
			"amount":   {"1.2.3"},
			"category": {"Other"},
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("expected invalid amount error, got %v", err)
		}
	})
}

func TestParseShares(t *testing.T) {
	shares, err := parseShares("50, 10, 10, 10, 10, 5, 5")
	if err != nil {
		t.Fatal(err)
	}
	if shares[0] != 50 || shares[6] != 5 {
		t.Errorf("unexpected shares: %v", shares)
	}

	if _, err := parseShares("50,50"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error for short list, got %v", err)
	}
	if _, err := parseShares("a,b,c,d,e,f,g"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error for non-numeric shares, got %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"strips control characters", "a\x00b\x07c", "abc"},
		{"keeps tabs and newlines", "a\tb\nc", "a\tb\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.in); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
