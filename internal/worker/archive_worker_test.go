package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finsmart/internal/amqp"
	"finsmart/internal/archive/memory"
	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/storage"
)

func testRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func archiveOne(t *testing.T, repo *storage.SQLiteRepository, cents int64) int64 {
	t.Helper()
	id, err := repo.Append(context.Background(), "sess", core.ExpenseRecord{
		Date:     core.NewDate(2025, 2, 1),
		Amount:   core.Money{Cents: cents},
		Category: "Groceries",
	})
	if err != nil {
		t.Fatalf("append archived expense: %v", err)
	}
	return id
}

func TestHandleArchiveMessage(t *testing.T) {
	repo := testRepo(t)
	target := memory.New()
	w := NewArchiveWorker(repo, target, 10, log.New(log.DefaultConfig()))

	id := archiveOne(t, repo, 1250)

	if err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(id)); err != nil {
		t.Fatal(err)
	}

	if target.Len() != 1 {
		t.Fatalf("expected 1 delivered record, got %d", target.Len())
	}
	row, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if row.SyncedAt == nil {
		t.Fatal("row must be marked synced after delivery")
	}

	// Redelivery of a synced row is a no-op.
	if err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(id)); err != nil {
		t.Fatal(err)
	}
	if target.Len() != 1 {
		t.Fatalf("synced row must not be delivered twice, got %d", target.Len())
	}
}

func TestProcessPending(t *testing.T) {
	repo := testRepo(t)
	target := memory.New()
	w := NewArchiveWorker(repo, target, 10, log.New(log.DefaultConfig()))

	for i := 0; i < 5; i++ {
		archiveOne(t, repo, int64(100*(i+1)))
	}

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if target.Len() != 5 {
		t.Fatalf("expected 5 delivered records, got %d", target.Len())
	}

	pending, err := repo.GetPending(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %d", len(pending))
	}
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, core.ExpenseRecord) (string, error) {
	return "", errors.New("target unavailable")
}

func TestDeliveryFailureKeepsRowPending(t *testing.T) {
	repo := testRepo(t)
	w := NewArchiveWorker(repo, failingAppender{}, 10, log.New(log.DefaultConfig()))

	id := archiveOne(t, repo, 999)

	if err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(id)); err == nil {
		t.Fatal("expected delivery error")
	}

	row, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if row.SyncedAt != nil {
		t.Fatal("failed delivery must leave the row unsynced")
	}
	if row.SyncError == "" {
		t.Fatal("failure must be recorded on the row")
	}

	// The sweep ignores per-row failures but leaves the row pending.
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	pending, err := repo.GetPending(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the row to stay pending, got %d", len(pending))
	}
}
