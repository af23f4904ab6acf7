// Package services orchestrates ledger mutations with the write-behind
// archive pipeline.
package services

import (
	"context"

	"finsmart/internal/core"
	"finsmart/internal/ledger"
	"finsmart/internal/log"
)

// Archiver persists an accepted expense durably and returns its row id.
type Archiver interface {
	Append(ctx context.Context, sessionID string, rec core.ExpenseRecord) (int64, error)
}

// Publisher fans an archived row id out to the sync worker.
type Publisher interface {
	PublishArchive(ctx context.Context, id int64) error
}

// ExpenseService records expenses in the session ledger and mirrors them to
// the archive. The ledger write is authoritative; archive and publish are
// best-effort and never fail the request.
type ExpenseService struct {
	archiver  Archiver
	publisher Publisher
	logger    *log.Logger
}

// NewExpenseService creates the service. archiver and publisher may be nil
// (memory backend, broker not configured).
func NewExpenseService(archiver Archiver, publisher Publisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		archiver:  archiver,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentExpense),
	}
}

// RecordExpense validates and appends an expense to the session ledger, then
// mirrors it to the archive. A validation failure leaves every store
// untouched.
func (s *ExpenseService) RecordExpense(ctx context.Context, sessionID string, l *ledger.Ledger, date core.Date, amount core.Money, category, description string) (core.ExpenseRecord, error) {
	rec, err := l.AddExpense(date, amount, category, description)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	s.logger.InfoContext(ctx, "expense recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldSessionID, sessionID,
		log.FieldCategory, rec.Category,
		log.FieldAmountCents, rec.Amount.Cents)

	s.archiveExpense(ctx, sessionID, rec)
	return rec, nil
}

// ImportExpenses appends a batch of already-parsed records, mirroring each
// accepted record to the archive. It stops at the first validation failure
// and reports how many records were appended before it.
func (s *ExpenseService) ImportExpenses(ctx context.Context, sessionID string, l *ledger.Ledger, records []core.ExpenseRecord) (int, error) {
	for i, rec := range records {
		added, err := l.AddExpense(rec.Date, rec.Amount, rec.Category, rec.Description)
		if err != nil {
			return i, err
		}
		s.archiveExpense(ctx, sessionID, added)
	}
	return len(records), nil
}

func (s *ExpenseService) archiveExpense(ctx context.Context, sessionID string, rec core.ExpenseRecord) {
	if s.archiver == nil {
		return
	}

	id, err := s.archiver.Append(ctx, sessionID, rec)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive expense",
			log.FieldSessionID, sessionID,
			log.FieldError, err)
		return
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishArchive(ctx, id); err != nil {
		// The periodic pending sweep picks the row up later.
		s.logger.ErrorContext(ctx, "failed to publish archive message",
			log.FieldArchiveID, id,
			log.FieldError, err)
	}
}
