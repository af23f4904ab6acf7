// Package session maps browser sessions to in-memory ledgers. Each session
// owns one ledger, created empty at first touch and discarded when the
// session sits idle past its TTL. Nothing is read back from the archive:
// session state is volatile on purpose.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"finsmart/internal/ledger"
	"finsmart/internal/log"
)

// Manager owns the sessionID -> ledger mapping with TTL expiry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *log.Logger

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

type entry struct {
	ledger   *ledger.Ledger
	lastSeen time.Time
}

// NewManager creates a manager expiring sessions idle for longer than ttl.
func NewManager(ttl time.Duration, logger *log.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*entry),
		ttl:         ttl,
		logger:      logger.WithComponent(log.ComponentSession),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// NewID generates a fresh session identifier.
func NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Get returns the ledger for a session, refreshing its idle timer. It reports
// false when the session is unknown or has expired.
func (m *Manager) Get(id string) (*ledger.Ledger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(e.lastSeen) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.ledger, true
}

// GetOrCreate returns the session's ledger, creating an empty one when the
// session is new or has expired.
func (m *Manager) GetOrCreate(id string) *ledger.Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if ok && time.Since(e.lastSeen) <= m.ttl {
		e.lastSeen = time.Now()
		return e.ledger
	}
	e = &entry{ledger: ledger.New(), lastSeen: time.Now()}
	m.sessions[id] = e
	return e.ledger
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartCleanup begins the periodic expiry sweep.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := m.sweep(); removed > 0 {
				m.logger.Debug("expired idle sessions",
					log.FieldOperation, log.OpExpire,
					log.FieldRecordCount, removed)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Stop halts the cleanup goroutine. Must be called after StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
