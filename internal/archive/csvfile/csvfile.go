// Package csvfile appends archived expenses to a local CSV file in the same
// interchange format the HTTP export uses.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ports "finsmart/internal/archive"
	"finsmart/internal/core"
)

type Appender struct {
	mu   sync.Mutex
	path string
}

var _ ports.Appender = (*Appender)(nil)

var header = []string{"date", "amount", "category", "description"}

// New creates a CSV appender writing to path. The file and its directory are
// created on first append.
func New(path string) *Appender {
	return &Appender{path: path}
}

// Append adds one row, writing the header first when the file is new. The
// reference is the file path plus the row's byte offset.
func (a *Appender) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open archive file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return "", fmt.Errorf("write archive header: %w", err)
		}
	}
	row := []string{rec.Date.String(), rec.Amount.Decimal(), rec.Category, rec.Description}
	if err := w.Write(row); err != nil {
		return "", fmt.Errorf("write archive row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush archive row: %w", err)
	}

	return fmt.Sprintf("%s@%d", a.path, info.Size()), nil
}
