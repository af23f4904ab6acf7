// Package storage persists the write-behind expense archive in SQLite. The
// archive is append-only from the service's point of view: the engine never
// reads session state back out of it, only the sync worker does.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finsmart/internal/core"

	_ "modernc.org/sqlite"
)

// ArchivedExpense is one archived ledger record with its sync bookkeeping.
type ArchivedExpense struct {
	ID          int64
	SessionID   string
	Record      core.ExpenseRecord
	CreatedAt   time.Time
	SyncedAt    *time.Time
	SyncError   string
}

// PendingExpense is the minimal row identity queued for the sync worker.
type PendingExpense struct {
	ID        int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append archives one expense record and returns the row id.
func (r *SQLiteRepository) Append(ctx context.Context, sessionID string, rec core.ExpenseRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO archived_expenses (session_id, expense_date, amount_cents, category, description)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, rec.Date.String(), rec.Amount.Cents, rec.Category, rec.Description)
	if err != nil {
		return 0, fmt.Errorf("insert archived expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read archived expense id: %w", err)
	}
	return id, nil
}

// Get retrieves a single archived expense by id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (ArchivedExpense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, expense_date, amount_cents, category, description,
		       created_at, synced_at, COALESCE(sync_error, '')
		FROM archived_expenses WHERE id = ?`, id)
	return scanArchived(row)
}

// GetPending returns up to limit unsynced rows, oldest first.
func (r *SQLiteRepository) GetPending(ctx context.Context, limit int) ([]PendingExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM archived_expenses
		WHERE synced_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending expenses: %w", err)
	}
	defer rows.Close()

	var pending []PendingExpense
	for rows.Next() {
		var p PendingExpense
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending expenses: %w", err)
	}
	return pending, nil
}

// MarkSynced stamps a row as delivered and clears any previous sync error.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE archived_expenses
		SET synced_at = CURRENT_TIMESTAMP, sync_error = NULL
		WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// MarkSyncError records a delivery failure; the row stays pending.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	if _, err := r.db.ExecContext(ctx, `
		UPDATE archived_expenses SET sync_error = ? WHERE id = ?`, msg, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	return nil
}

func scanArchived(row *sql.Row) (ArchivedExpense, error) {
	var (
		a         ArchivedExpense
		dateStr   string
		cents     int64
		category  string
		desc      string
		syncedAt  sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.SessionID, &dateStr, &cents, &category, &desc,
		&a.CreatedAt, &syncedAt, &a.SyncError); err != nil {
		return ArchivedExpense{}, fmt.Errorf("scan archived expense: %w", err)
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return ArchivedExpense{}, fmt.Errorf("archived expense %d has bad date %q: %w", a.ID, dateStr, err)
	}
	a.Record = core.ExpenseRecord{
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: desc,
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		a.SyncedAt = &t
	}
	return a, nil
}
