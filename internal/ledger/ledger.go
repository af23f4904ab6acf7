// Package ledger implements the budget and expense ledger engine: an
// append-only expense collection, a category registry, per-category budget
// allocations, and the pure query and aggregation operations over them.
//
// A Ledger is scoped to one user session. Mutations happen at exactly two
// boundaries (AddExpense, SetBudget) and are all-or-nothing; everything else
// is a read that returns copies, so callers can never corrupt engine state.
package ledger

import (
	"strings"
	"sync"

	"finsmart/internal/core"
)

// Ledger owns the expense records, category registry and budget allocations
// for one session. The zero value is not usable; construct with New.
type Ledger struct {
	mu       sync.Mutex
	records  []core.ExpenseRecord
	registry *CategoryRegistry
	budgets  map[string]core.Money
}

// New creates an empty ledger seeded with the default categories.
func New() *Ledger {
	return &Ledger{
		registry: NewCategoryRegistry(DefaultCategories...),
		budgets:  make(map[string]core.Money),
	}
}

// NewWithCategories creates an empty ledger with a custom category seed.
func NewWithCategories(categories ...string) *Ledger {
	return &Ledger{
		registry: NewCategoryRegistry(categories...),
		budgets:  make(map[string]core.Money),
	}
}

// AddExpense validates and appends a record. On any validation failure the
// ledger is left untouched. The category must already be registered; custom
// categories enter the registry through SetBudget or RegisterCategory first.
func (l *Ledger) AddExpense(date core.Date, amount core.Money, category, description string) (core.ExpenseRecord, error) {
	rec := core.ExpenseRecord{
		Date:        date,
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.registry.Contains(rec.Category) {
		return core.ExpenseRecord{}, core.ErrUnknownCategory
	}
	l.records = append(l.records, rec)
	return rec, nil
}

// RegisterCategory adds a custom category to the registry. It reports whether
// the name was newly added.
func (l *Ledger) RegisterCategory(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.Add(name)
}

// Records returns all records in append order.
func (l *Ledger) Records() []core.ExpenseRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.ExpenseRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Categories returns the registered category names in insertion order.
func (l *Ledger) Categories() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.Names()
}

// Budgets returns a copy of the allocation map.
func (l *Ledger) Budgets() map[string]core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]core.Money, len(l.budgets))
	for k, v := range l.budgets {
		out[k] = v
	}
	return out
}
