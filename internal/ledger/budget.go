package ledger

import (
	"strings"

	"finsmart/internal/core"
)

// Severity classifies how much of a budget is used. Thresholds are inclusive
// at the lower bound: below 60% is ok, 60% up to (not including) 80% is
// warning, 80% and above is critical.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	warningThreshold  = 60.0
	criticalThreshold = 80.0
)

// CategoryStatus compares one category's budget against actual spending.
// Remaining is negative when the category is over budget; Overshoot then
// carries the absolute overrun for display ("over budget by X").
type CategoryStatus struct {
	Category    string
	Budget      core.Money
	Spent       core.Money
	Remaining   core.Money
	PercentUsed float64 // capped at 100
	Severity    Severity
	OverBudget  bool
	Overshoot   core.Money // zero unless OverBudget
}

// BudgetSummary aggregates all budgeted categories for the overall metric row.
type BudgetSummary struct {
	TotalBudget      core.Money
	TotalSpent       core.Money
	Remaining        core.Money
	RemainingPercent float64 // 0 when no budget is set
}

// SetBudget sets the spending limit for a category. A new category is
// registered first, then the allocation is stored; a validation failure
// leaves both registry and allocation untouched.
func (l *Ledger) SetBudget(category string, amount core.Money) error {
	if amount.Cents < 0 {
		return core.ErrInvalidBudget
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return core.ErrEmptyCategory
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Registry mutation happens before the allocation mutation so the
	// allocation keys always reference registered categories.
	l.registry.Add(category)
	l.budgets[category] = amount
	return nil
}

// BudgetStatus compares the allocations against actual per-category spending
// (as produced by SumByCategory). Only categories with a budget above zero
// are included, in registry order.
func (l *Ledger) BudgetStatus(actual map[string]core.Money) []CategoryStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CategoryStatus, 0, len(l.budgets))
	for _, category := range l.registry.Names() {
		budget, ok := l.budgets[category]
		if !ok || budget.Cents <= 0 {
			continue
		}
		out = append(out, statusFor(category, budget, actual[category]))
	}
	return out
}

func statusFor(category string, budget, spent core.Money) CategoryStatus {
	st := CategoryStatus{
		Category:  category,
		Budget:    budget,
		Spent:     spent,
		Remaining: core.Money{Cents: budget.Cents - spent.Cents},
	}

	pct := float64(spent.Cents) / float64(budget.Cents) * 100.0
	if pct > 100 {
		pct = 100
	}
	st.PercentUsed = pct

	switch {
	case st.Remaining.Cents < 0 || pct >= criticalThreshold:
		st.Severity = SeverityCritical
	case pct >= warningThreshold:
		st.Severity = SeverityWarning
	default:
		st.Severity = SeverityOK
	}

	if st.Remaining.Cents < 0 {
		st.OverBudget = true
		st.Overshoot = core.Money{Cents: -st.Remaining.Cents}
	}
	return st
}

// Summary totals every budgeted category against actual spending for the
// overall budget metric row.
func (l *Ledger) Summary(actual map[string]core.Money) BudgetSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s BudgetSummary
	for category, budget := range l.budgets {
		if budget.Cents <= 0 {
			continue
		}
		s.TotalBudget.Cents += budget.Cents
		s.TotalSpent.Cents += actual[category].Cents
	}
	s.Remaining.Cents = s.TotalBudget.Cents - s.TotalSpent.Cents
	if s.TotalBudget.Cents > 0 {
		s.RemainingPercent = float64(s.Remaining.Cents) / float64(s.TotalBudget.Cents) * 100.0
	}
	return s
}
