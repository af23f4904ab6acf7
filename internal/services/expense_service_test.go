package services

import (
	"context"
	"errors"
	"testing"

	"finsmart/internal/core"
	"finsmart/internal/ledger"
	"finsmart/internal/log"
)

type fakeArchiver struct {
	records []core.ExpenseRecord
	err     error
	nextID  int64
}

func (f *fakeArchiver) Append(_ context.Context, _ string, rec core.ExpenseRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, rec)
	f.nextID++
	return f.nextID, nil
}

type fakePublisher struct {
	ids []int64
	err error
}

func (f *fakePublisher) PublishArchive(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

func testService(archiver Archiver, publisher Publisher) *ExpenseService {
	return NewExpenseService(archiver, publisher, log.New(log.DefaultConfig()))
}

func TestRecordExpense(t *testing.T) {
	archiver := &fakeArchiver{}
	publisher := &fakePublisher{}
	svc := testService(archiver, publisher)
	l := ledger.New()

	rec, err := svc.RecordExpense(context.Background(), "sess", l,
		core.NewDate(2025, 3, 1), core.Money{Cents: 1250}, "Groceries", "weekly shop")
	if err != nil {
		t.Fatal(err)
	}

	if l.Len() != 1 {
		t.Fatalf("expected 1 ledger record, got %d", l.Len())
	}
	if len(archiver.records) != 1 || archiver.records[0] != rec {
		t.Fatalf("expected the record to be archived, got %+v", archiver.records)
	}
	if len(publisher.ids) != 1 || publisher.ids[0] != 1 {
		t.Fatalf("expected archive id 1 published, got %v", publisher.ids)
	}
}

func TestRecordExpenseValidationFailure(t *testing.T) {
	archiver := &fakeArchiver{}
	svc := testService(archiver, &fakePublisher{})
	l := ledger.New()

	_, err := svc.RecordExpense(context.Background(), "sess", l,
		core.NewDate(2025, 3, 1), core.Money{Cents: -1}, "Groceries", "")
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if l.Len() != 0 {
		t.Fatal("rejected expense must not reach the ledger")
	}
	if len(archiver.records) != 0 {
		t.Fatal("rejected expense must not reach the archive")
	}
}

func TestRecordExpenseArchiveFailureDoesNotFailRequest(t *testing.T) {
	archiver := &fakeArchiver{err: errors.New("db down")}
	publisher := &fakePublisher{}
	svc := testService(archiver, publisher)
	l := ledger.New()

	if _, err := svc.RecordExpense(context.Background(), "sess", l,
		core.NewDate(2025, 3, 1), core.Money{Cents: 100}, "Other", ""); err != nil {
		t.Fatalf("archive failure must not fail the request, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatal("ledger write must survive archive failure")
	}
	if len(publisher.ids) != 0 {
		t.Fatal("nothing to publish when archiving failed")
	}
}

func TestRecordExpensePublishFailureDoesNotFailRequest(t *testing.T) {
	svc := testService(&fakeArchiver{}, &fakePublisher{err: errors.New("broker down")})
	l := ledger.New()

	if _, err := svc.RecordExpense(context.Background(), "sess", l,
		core.NewDate(2025, 3, 1), core.Money{Cents: 100}, "Other", ""); err != nil {
		t.Fatalf("publish failure must not fail the request, got %v", err)
	}
}

func TestRecordExpenseWithoutArchive(t *testing.T) {
	svc := testService(nil, nil)
	l := ledger.New()

	if _, err := svc.RecordExpense(context.Background(), "sess", l,
		core.NewDate(2025, 3, 1), core.Money{Cents: 100}, "Other", ""); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 {
		t.Fatal("memory-only mode must still append to the ledger")
	}
}

func TestImportExpenses(t *testing.T) {
	archiver := &fakeArchiver{}
	svc := testService(archiver, &fakePublisher{})
	l := ledger.New()

	records := []core.ExpenseRecord{
		{Date: core.NewDate(2025, 1, 1), Amount: core.Money{Cents: 100}, Category: "Groceries"},
		{Date: core.NewDate(2025, 1, 2), Amount: core.Money{Cents: 200}, Category: "Other"},
	}
	n, err := svc.ImportExpenses(context.Background(), "sess", l, records)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || l.Len() != 2 {
		t.Fatalf("expected 2 imported, got n=%d len=%d", n, l.Len())
	}
	if len(archiver.records) != 2 {
		t.Fatalf("expected 2 archived, got %d", len(archiver.records))
	}
}

func TestImportExpensesStopsAtFirstBadRecord(t *testing.T) {
	svc := testService(&fakeArchiver{}, &fakePublisher{})
	l := ledger.New()

	records := []core.ExpenseRecord{
		{Date: core.NewDate(2025, 1, 1), Amount: core.Money{Cents: 100}, Category: "Groceries"},
		{Date: core.NewDate(2025, 1, 2), Amount: core.Money{Cents: 200}, Category: "NotRegistered"},
		{Date: core.NewDate(2025, 1, 3), Amount: core.Money{Cents: 300}, Category: "Other"},
	}
	n, err := svc.ImportExpenses(context.Background(), "sess", l, records)
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record imported before failure, got %d", n)
	}
	if l.Len() != 1 {
		t.Fatalf("expected ledger to hold only the first record, got %d", l.Len())
	}
}
