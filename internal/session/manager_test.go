package session

import (
	"testing"
	"time"

	"finsmart/internal/core"
	"finsmart/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewID()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("ids must not repeat")
	}
}

func TestGetOrCreate(t *testing.T) {
	m := NewManager(time.Hour, testLogger())

	l := m.GetOrCreate("abc")
	if l == nil {
		t.Fatal("expected a ledger")
	}
	if _, err := l.AddExpense(core.NewDate(2025, 1, 1), core.Money{Cents: 100}, "Other", ""); err != nil {
		t.Fatal(err)
	}

	// Same session, same ledger.
	again := m.GetOrCreate("abc")
	if again.Len() != 1 {
		t.Fatalf("expected the same ledger back, got %d records", again.Len())
	}

	// Different session, different ledger.
	other := m.GetOrCreate("def")
	if other.Len() != 0 {
		t.Fatal("sessions must not share ledgers")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Len())
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager(time.Hour, testLogger())
	if _, ok := m.Get("nope"); ok {
		t.Fatal("unknown session must not resolve")
	}
}

func TestExpiry(t *testing.T) {
	m := NewManager(10*time.Millisecond, testLogger())

	l := m.GetOrCreate("abc")
	if _, err := l.AddExpense(core.NewDate(2025, 1, 1), core.Money{Cents: 100}, "Other", ""); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get("abc"); ok {
		t.Fatal("idle session must expire")
	}

	// GetOrCreate after expiry starts fresh.
	fresh := m.GetOrCreate("abc")
	if fresh.Len() != 0 {
		t.Fatal("expired session data must not survive")
	}
}

func TestSweep(t *testing.T) {
	m := NewManager(10*time.Millisecond, testLogger())

	m.GetOrCreate("a")
	m.GetOrCreate("b")
	time.Sleep(20 * time.Millisecond)
	m.GetOrCreate("c")

	if removed := m.sweep(); removed != 2 {
		t.Fatalf("expected 2 expired sessions, got %d", removed)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", m.Len())
	}
}
