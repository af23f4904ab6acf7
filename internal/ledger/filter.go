package ledger

import "finsmart/internal/core"

// Selection is an explicit category constraint. The UI convention of "empty
// multi-select" is ambiguous, so the engine forces callers to say what they
// mean: All matches every category; otherwise only the listed names match,
// and an empty list matches nothing.
type Selection struct {
	All   bool
	Names []string
}

// AllCategories matches every category.
func AllCategories() Selection {
	return Selection{All: true}
}

// OnlyCategories matches exactly the given names. With no names it matches
// nothing.
func OnlyCategories(names ...string) Selection {
	return Selection{Names: names}
}

func (s Selection) matches(category string) bool {
	if s.All {
		return true
	}
	for _, n := range s.Names {
		if n == category {
			return true
		}
	}
	return false
}

// Query restricts a filter pass. Zero From/To bounds leave that side of the
// date range open; both bounds are inclusive.
type Query struct {
	From       core.Date
	To         core.Date
	Categories Selection
}

// Filter returns the records matching q, preserving append order. It never
// fails: an empty result is a valid outcome.
func (l *Ledger) Filter(q Query) []core.ExpenseRecord {
	return FilterRecords(l.Records(), q)
}

// FilterRecords applies q to an arbitrary record sequence, preserving input
// order. Useful for composing with other aggregates without re-reading the
// ledger.
func FilterRecords(records []core.ExpenseRecord, q Query) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, rec := range records {
		if !q.From.IsZero() && rec.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && rec.Date.After(q.To) {
			continue
		}
		if !q.Categories.matches(rec.Category) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
