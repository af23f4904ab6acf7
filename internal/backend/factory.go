package backend

import (
	"context"
	"fmt"

	"finsmart/internal/amqp"
	"finsmart/internal/archive"
	"finsmart/internal/archive/csvfile"
	"finsmart/internal/archive/google"
	"finsmart/internal/archive/memory"
	"finsmart/internal/log"
	"finsmart/internal/services"
	"finsmart/internal/storage"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend assembles the server-side pipeline for the configured
// backend type.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	case SQLiteBackend, SheetsBackend:
		// Sheets archives through SQLite too; the worker delivers the rows.
		return f.createSQLiteBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createMemoryBackend keeps expenses only in session ledgers. Nothing is
// archived and the worker has nothing to do.
func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*Result, error) {
	f.logger.InfoContext(ctx, "using in-memory backend, expenses are not archived")
	return &Result{
		Service: services.NewExpenseService(nil, nil, f.logger),
		Cleanup: func() error { return nil },
	}, nil
}

// createSQLiteBackend archives expenses to SQLite and, when a broker is
// configured, publishes each archived row for the worker. A broker failure
// degrades to sweep-only delivery instead of failing startup.
func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("create sqlite repository: %w", err)
	}

	var publisher services.Publisher
	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.ErrorContext(ctx, "failed to connect to AMQP, continuing with sweep-only sync",
				log.FieldError, err)
			client = nil
		} else {
			publisher = client
		}
	}

	cleanup := func() error {
		if client != nil {
			if err := client.Close(); err != nil {
				f.logger.Error("failed to close AMQP client", log.FieldError, err)
			}
		}
		return repo.Close()
	}

	f.logger.InfoContext(ctx, "backend initialized",
		log.FieldBackend, config.Type.String(),
		"db_path", config.SQLiteDBPath,
		"amqp_connected", publisher != nil)

	return &Result{
		Service: services.NewExpenseService(repo, publisher, f.logger),
		Storage: repo,
		AMQP:    client,
		Cleanup: cleanup,
	}, nil
}

// CreateArchiveTarget builds the delivery target the worker appends archived
// rows to: Google Sheets for the sheets backend, a local CSV file for
// sqlite, an in-memory store otherwise.
func (f *DefaultFactory) CreateArchiveTarget(ctx context.Context, config Config) (archive.Appender, error) {
	switch config.Type {
	case SheetsBackend:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleCredentialsJSON,
			CredentialsFile: config.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("create sheets client: %w", err)
		}
		return client, nil
	case SQLiteBackend:
		return csvfile.New(config.ArchiveCSVPath), nil
	case MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
