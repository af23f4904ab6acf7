// Package http serves the ledger UI and JSON API.
//
// This file holds the shared request parsing helpers: filter queries, form
// fields, and numeric parameters.
package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finsmart/internal/core"
	"finsmart/internal/ledger"
)

// parseFilterQuery builds a ledger query from from/to/category parameters.
// Absent category parameters mean "all categories"; present ones restrict the
// result to exactly the named set.
func parseFilterQuery(query url.Values) (ledger.Query, error) {
	q := ledger.Query{Categories: ledger.AllCategories()}

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Query{}, fmt.Errorf("from: %w", err)
		}
		q.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Query{}, fmt.Errorf("to: %w", err)
		}
		q.To = d
	}

	if names := parseCategoryParams(query); names != nil {
		q.Categories = ledger.OnlyCategories(names...)
	}
	return q, nil
}

// parseCategoryParams collects category constraints from repeated "category"
// parameters and comma-separated "categories" values. nil means the request
// did not constrain categories at all.
func parseCategoryParams(query url.Values) []string {
	var names []string
	seen := false
	for _, v := range query["category"] {
		seen = true
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	if v, ok := query["categories"]; ok {
		seen = true
		for _, group := range v {
			for _, name := range strings.Split(group, ",") {
				if name = strings.TrimSpace(name); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	if !seen {
		return nil
	}
	if names == nil {
		// Explicitly empty selection, matches nothing.
		names = []string{}
	}
	return names
}

// parseExpenseForm extracts the expense fields from a submitted form. The
// date defaults to today when the field is empty.
func parseExpenseForm(form url.Values) (date core.Date, amount core.Money, category, description string, err error) {
	if v := strings.TrimSpace(form.Get("date")); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			return core.Date{}, core.Money{}, "", "", err
		}
	} else {
		date = core.Today()
	}

	cents, err := core.ParseDecimalToCents(form.Get("amount"))
	if err != nil {
		return core.Date{}, core.Money{}, "", "", err
	}

	category = sanitizeInput(form.Get("category"))
	description = sanitizeInput(form.Get("description"))
	return date, core.Money{Cents: cents}, category, description, nil
}

// parseFloatParam parses an optional float query parameter.
func parseFloatParam(query url.Values, name string, def float64) (float64, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", core.ErrValidation, name, v)
	}
	return f, nil
}

// parseIntParam parses an optional integer query parameter.
func parseIntParam(query url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", core.ErrValidation, name, v)
	}
	return n, nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks the request method against the allowed set, returning
// an error response builder on mismatch and nil when the method is allowed.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// ParseFormOrFail parses the request form, returning an error response on
// failure and nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("malformed request body")
	}
	return nil
}
