package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"housebudget/internal/amqp"
	"housebudget/internal/sheets"
	gsheet "housebudget/internal/sheets/google"
	"housebudget/internal/sheets/memory"
	"housebudget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the record store, then the optional broker and
// spreadsheet mirror. An unreachable broker is logged and skipped; a
// misconfigured spreadsheet is an error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	reports, err := f.createReportWriter(ctx, config)
	if err != nil {
		store.Close()
		return nil, err
	}

	events := f.createEvents(config)

	return &BackendResult{
		Store:   store,
		Events:  events,
		Reports: reports,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (storage.RecordStore, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return store, nil
	case PostgresBackend:
		store, err := storage.NewPostgresStore(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return store, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createEvents(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func (f *DefaultFactory) createReportWriter(ctx context.Context, config Config) (sheets.ReportWriter, error) {
	if config.GoogleSpreadsheetID == "" {
		return memory.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsFile: config.GoogleServiceAccountFile,
		CredentialsJSON: config.GoogleServiceAccountJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets report mirror", "sheet", config.GoogleSheetName)
	return client, nil
}
