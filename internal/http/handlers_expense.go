// Expense recording, history, budgets, and CSV interchange.
package http

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"finsmart/internal/core"
	"finsmart/internal/export"
	"finsmart/internal/ledger"
	"finsmart/internal/log"
)

// maxImportSize bounds CSV uploads to 1 MiB.
const maxImportSize = 1 << 20

// handleExpenses serves GET (filtered history partial) and POST (record a
// new expense).
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	date, amount, category, description, err := parseExpenseForm(r.Form)
	if err != nil {
		ValidationError("invalid expense: " + err.Error()).Write(w)
		return
	}

	sessionID := sessionFrom(r.Context())
	l := ledgerFrom(r.Context())
	rec, err := s.service.RecordExpense(r.Context(), sessionID, l, date, amount, category, description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateSession(sessionID)
	NewHTMXResponse().
		TriggerExpenseCreated(rec.Category).
		TriggerFormReset().
		BodyHTML(`<div class="success">Recorded ` + template.HTMLEscapeString(formatMoney(rec.Amount)) +
			` in ` + template.HTMLEscapeString(rec.Category) + `</div>`).
		Write(w)
}

// expenseRow is the template model for one history line.
type expenseRow struct {
	Date        string
	Amount      string
	Category    string
	Description string
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sessionID := sessionFrom(r.Context())
	l := ledgerFrom(r.Context())

	render := func() any {
		records := l.Filter(q)
		rows := make([]expenseRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, expenseRow{
				Date:        rec.Date.String(),
				Amount:      formatMoney(rec.Amount),
				Category:    rec.Category,
				Description: rec.Description,
			})
		}
		return struct {
			Rows  []expenseRow
			Total string
		}{Rows: rows, Total: formatMoney(ledger.Total(records))}
	}

	body, err := s.cachedPartial(sessionID, "expenses", r.URL.RawQuery, "expense_list.html", render)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// handleSetBudget sets or replaces a category budget. New category names are
// registered on the fly.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	category := sanitizeInput(r.Form.Get("category"))
	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		ValidationError("invalid budget amount").Write(w)
		return
	}

	sessionID := sessionFrom(r.Context())
	l := ledgerFrom(r.Context())
	if err := l.SetBudget(category, core.Money{Cents: cents}); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "budget set",
		log.FieldSessionID, sessionID,
		log.FieldCategory, category,
		log.FieldAmountCents, cents)

	s.invalidateSession(sessionID)
	NewHTMXResponse().
		TriggerBudgetUpdated(category).
		BodyHTML(`<div class="success">Budget for ` + template.HTMLEscapeString(category) +
			` set to ` + template.HTMLEscapeString(formatMoney(core.Money{Cents: cents})) + `</div>`).
		Write(w)
}

// handleExportCSV streams the (optionally filtered) ledger as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
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
	records := l.Filter(q)

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already out; log and give up on this response.
		s.logger.ErrorContext(r.Context(), "csv export failed", log.FieldError, err)
	}
}

// handleImportCSV appends records from an uploaded CSV file. Validation stops
// the import at the first bad row; rows before it stay appended.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		BadRequestError("malformed upload").Write(w)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		BadRequestError("missing csv file").Write(w)
		return
	}
	defer file.Close()

	records, err := export.ReadCSV(file)
	if err != nil {
		ValidationError("invalid csv: " + err.Error()).Write(w)
		return
	}

	sessionID := sessionFrom(r.Context())
	l := ledgerFrom(r.Context())
	n, err := s.service.ImportExpenses(r.Context(), sessionID, l, records)
	s.invalidateSession(sessionID)

	s.logger.InfoContext(r.Context(), "csv import finished",
		log.FieldOperation, log.OpImport,
		log.FieldSessionID, sessionID,
		log.FieldRecordCount, n)

	if err != nil {
		ValidationError(fmt.Sprintf("imported %d records, then failed: %v", n, err)).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerLedgerImported(n).
		BodyHTML(fmt.Sprintf(`<div class="success">Imported %d expenses</div>`, n)).
		Write(w)
}
