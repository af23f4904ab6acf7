// Package worker drains the expense archive: it consumes AMQP archive
// messages and periodically sweeps rows the messages missed.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finsmart/internal/amqp"
	"finsmart/internal/archive"
	"finsmart/internal/log"
	"finsmart/internal/storage"
)

// deliveryParallelism bounds concurrent appends per sweep so a slow archive
// target cannot pile up goroutines.
const deliveryParallelism = 4

// ArchiveWorker moves archived rows from SQLite to the archive target.
type ArchiveWorker struct {
	storage   *storage.SQLiteRepository
	target    archive.Appender
	batchSize int
	logger    *log.Logger
}

func NewArchiveWorker(store *storage.SQLiteRepository, target archive.Appender, batchSize int, logger *log.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		storage:   store,
		target:    target,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleArchiveMessage processes a single archive message from AMQP.
func (w *ArchiveWorker) HandleArchiveMessage(ctx context.Context, msg *amqp.ArchiveMessage) error {
	w.logger.DebugContext(ctx, "processing archive message", log.FieldArchiveID, msg.ID)
	return w.deliver(ctx, msg.ID)
}

// ProcessPending sweeps unsynced rows in one bounded-parallel batch. It is a
// backup path for lost AMQP messages; per-row failures are recorded on the
// row and do not fail the sweep.
func (w *ArchiveWorker) ProcessPending(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupCatchUp drains a larger backlog once at worker start, recovering
// from downtime.
func (w *ArchiveWorker) StartupCatchUp(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *ArchiveWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "processing pending archive rows",
		log.FieldOperation, log.OpSync,
		log.FieldRecordCount, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deliveryParallelism)
	for _, p := range pending {
		id := p.ID
		g.Go(func() error {
			if err := w.deliver(gctx, id); err != nil {
				w.logger.ErrorContext(gctx, "failed to deliver archived expense",
					log.FieldArchiveID, id,
					log.FieldError, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// deliver fetches one row and appends it to the archive target, updating the
// row's sync state either way.
func (w *ArchiveWorker) deliver(ctx context.Context, id int64) error {
	row, err := w.storage.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get archived expense: %w", err)
	}
	if row.SyncedAt != nil {
		// Sweep and AMQP paths can race on the same row.
		return nil
	}

	ref, err := w.target.Append(ctx, row.Record)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id, err); markErr != nil {
			w.logger.ErrorContext(ctx, "failed to mark sync error",
				log.FieldArchiveID, id,
				log.FieldError, markErr)
		}
		return fmt.Errorf("append to archive: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The append worked; losing the mark only risks one duplicate later.
		w.logger.ErrorContext(ctx, "failed to mark as synced",
			log.FieldArchiveID, id,
			log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "archived expense delivered",
		log.FieldArchiveID, id,
		"ref", ref,
		log.FieldCategory, row.Record.Category,
		log.FieldAmountCents, row.Record.Amount.Cents)
	return nil
}
