package ledger

import (
	"fmt"
	"sort"
	"time"

	"finsmart/internal/core"
)

// Granularity selects the bucket size for SumByPeriod.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// PeriodTotal is one bucket of a period series: a canonical period key
// ("2025-03-09", "2025-W11" or "2025-03") and the summed amount.
type PeriodTotal struct {
	Period string
	Total  core.Money
}

// SumByCategory groups records by category and sums the amounts. Categories
// absent from the input are absent from the result. The result is independent
// of input order.
func SumByCategory(records []core.ExpenseRecord) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, rec := range records {
		m := out[rec.Category]
		m.Cents += rec.Amount.Cents
		out[rec.Category] = m
	}
	return out
}

// SumByPeriod buckets records by calendar day, ISO week or year-month and
// returns the buckets ordered by period start ascending.
func SumByPeriod(records []core.ExpenseRecord, g Granularity) ([]PeriodTotal, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: unknown granularity %q", core.ErrValidation, g)
	}

	type bucket struct {
		start time.Time
		cents int64
	}
	buckets := make(map[string]*bucket)
	for _, rec := range records {
		key, start := periodOf(rec.Date, g)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: start}
			buckets[key] = b
		}
		b.cents += rec.Amount.Cents
	}

	out := make([]PeriodTotal, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, PeriodTotal{Period: key, Total: core.Money{Cents: b.cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		return buckets[out[i].Period].start.Before(buckets[out[j].Period].start)
	})
	return out, nil
}

// periodOf returns the canonical key and the period start for a date.
func periodOf(d core.Date, g Granularity) (string, time.Time) {
	switch g {
	case Weekly:
		year, week := d.ISOWeek()
		// Walk back to the ISO week's Monday for the sortable period start.
		start := d.Time
		for start.Weekday() != time.Monday {
			start = start.AddDate(0, 0, -1)
		}
		return fmt.Sprintf("%04d-W%02d", year, week), start
	case Monthly:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return d.Format("2006-01"), start
	default: // Daily
		return d.String(), d.Time
	}
}

// Total sums all record amounts; zero for an empty sequence.
func Total(records []core.ExpenseRecord) core.Money {
	var cents int64
	for _, rec := range records {
		cents += rec.Amount.Cents
	}
	return core.Money{Cents: cents}
}
