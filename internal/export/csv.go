// Package export reads and writes the expense interchange format: CSV with a
// date,amount,category,description header, ISO dates and two-decimal amounts.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"finsmart/internal/core"
)

var header = []string{"date", "amount", "category", "description"}

// WriteCSV writes records to w in the interchange format, header first.
func WriteCSV(w io.Writer, records []core.ExpenseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range records {
		row := []string{rec.Date.String(), rec.Amount.Decimal(), rec.Category, rec.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the interchange format back into records. The header row is
// required. Parse failures report the 1-based data row they occurred on.
func ReadCSV(r io.Reader) ([]core.ExpenseRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv input", core.ErrValidation)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range header {
		if first[i] != want {
			return nil, fmt.Errorf("%w: expected header %v, got %v", core.ErrValidation, header, first)
		}
	}

	var records []core.ExpenseRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		date, err := core.ParseDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		cents, err := core.ParseDecimalToCents(fields[1])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		rec := core.ExpenseRecord{
			Date:        date,
			Amount:      core.Money{Cents: cents},
			Category:    fields[2],
			Description: fields[3],
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		records = append(records, rec)
	}
}
