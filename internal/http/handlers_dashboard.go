// Dashboard page and the HTMX/JSON partials backing it.
package http

import (
	"net/http"

	"finsmart/internal/core"
	"finsmart/internal/ledger"
	"finsmart/internal/log"
)

// statusRow is the template model for one budget status line.
type statusRow struct {
	Category    string
	Budget      string
	Spent       string
	Remaining   string
	PercentUsed float64
	Severity    string
	OverBudget  bool
	Overshoot   string
}

func statusRows(statuses []ledger.CategoryStatus) []statusRow {
	rows := make([]statusRow, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, statusRow{
			Category:    st.Category,
			Budget:      formatMoney(st.Budget),
			Spent:       formatMoney(st.Spent),
			Remaining:   formatMoney(st.Remaining),
			PercentUsed: st.PercentUsed,
			Severity:    string(st.Severity),
			OverBudget:  st.OverBudget,
			Overshoot:   formatMoney(st.Overshoot),
		})
	}
	return rows
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	l := ledgerFrom(r.Context())
	records := l.Records()
	today := core.Today()
	monthFrom, monthTo := monthRange(today)

	monthRecords := ledger.FilterRecords(records, ledger.Query{
		From: monthFrom, To: monthTo, Categories: ledger.AllCategories(),
	})
	todayRecords := ledger.FilterRecords(records, ledger.Query{
		From: today, To: today, Categories: ledger.AllCategories(),
	})

	monthActual := ledger.SumByCategory(monthRecords)
	summary := l.Summary(monthActual)

	data := struct {
		Today        string
		Total        string
		MonthTotal   string
		TodayTotal   string
		RecordCount  int
		Categories   []string
		Statuses     []statusRow
		TotalBudget  string
		BudgetSpent  string
		Remaining    string
		RemainingPct float64
		HasBudget    bool
	}{
		Today:        today.String(),
		Total:        formatMoney(ledger.Total(records)),
		MonthTotal:   formatMoney(ledger.Total(monthRecords)),
		TodayTotal:   formatMoney(ledger.Total(todayRecords)),
		RecordCount:  len(records),
		Categories:   l.Categories(),
		Statuses:     statusRows(l.BudgetStatus(monthActual)),
		TotalBudget:  formatMoney(summary.TotalBudget),
		BudgetSpent:  formatMoney(summary.TotalSpent),
		Remaining:    formatMoney(summary.Remaining),
		RemainingPct: summary.RemainingPercent,
		HasBudget:    summary.TotalBudget.Cents > 0,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "index template execution failed", log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleBudgetStatus renders the budget-vs-actual partial for the current
// month.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	l := ledgerFrom(r.Context())
	sessionID := sessionFrom(r.Context())
	today := core.Today()
	monthFrom, monthTo := monthRange(today)

	render := func() any {
		monthActual := ledger.SumByCategory(l.Filter(ledger.Query{
			From: monthFrom, To: monthTo, Categories: ledger.AllCategories(),
		}))
		summary := l.Summary(monthActual)
		return struct {
			Statuses     []statusRow
			TotalBudget  string
			BudgetSpent  string
			Remaining    string
			RemainingPct float64
			HasBudget    bool
		}{
			Statuses:     statusRows(l.BudgetStatus(monthActual)),
			TotalBudget:  formatMoney(summary.TotalBudget),
			BudgetSpent:  formatMoney(summary.TotalSpent),
			Remaining:    formatMoney(summary.Remaining),
			RemainingPct: summary.RemainingPercent,
			HasBudget:    summary.TotalBudget.Cents > 0,
		}
	}

	body, err := s.cachedPartial(sessionID, "budget-status", today.String(), "budget_status.html", render)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// handleCategoryBreakdown returns per-category totals as JSON, suitable for
// pie and bar charts. The usual filter parameters apply.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	q, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l := ledgerFrom(r.Context())
	byCategory := ledger.SumByCategory(l.Filter(q))

	out := make(map[string]float64, len(byCategory))
	for category, amount := range byCategory {
		out[category] = amount.Float()
	}
	writeJSON(w, out)
}

// trendPoint is one bucket of the spending trend series.
type trendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// handleSpendingTrend returns the period series ordered by period start.
func (s *Server) handleSpendingTrend(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	g := ledger.Monthly
	if v := r.URL.Query().Get("granularity"); v != "" {
		g = ledger.Granularity(v)
	}

	q, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l := ledgerFrom(r.Context())
	totals, err := ledger.SumByPeriod(l.Filter(q), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]trendPoint, 0, len(totals))
	for _, pt := range totals {
		out = append(out, trendPoint{Label: pt.Period, Value: pt.Total.Float()})
	}
	writeJSON(w, out)
}
