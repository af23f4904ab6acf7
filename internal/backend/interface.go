// Package backend assembles the archive pipeline for a configured data
// backend: memory (no archive), sqlite (local archive), or sheets (local
// archive drained to Google Sheets by the worker).
package backend

import (
	"context"

	"finsmart/internal/amqp"
	"finsmart/internal/archive"
	"finsmart/internal/services"
	"finsmart/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles what the server needs from a constructed backend. Storage
// and AMQP are nil for the memory backend.
type Result struct {
	Service *services.ExpenseService
	Storage *storage.SQLiteRepository
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	// CreateBackend assembles the archive pipeline for the configured type.
	CreateBackend(ctx context.Context, config Config) (*Result, error)
	// CreateArchiveTarget builds the worker-side delivery target.
	CreateArchiveTarget(ctx context.Context, config Config) (archive.Appender, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite archive
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets target
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// CSV fallback target
	ArchiveCSVPath string
}

// BackendType represents the type of backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
