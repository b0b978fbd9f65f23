package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/adapters"
	"spendlog/internal/amqp"
	gsheet "spendlog/internal/sheets/google"
	"spendlog/internal/sheets/memory"
	"spendlog/internal/storage"
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
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; rows stay pending until the worker's sweep picks them up
	var amqpClient *amqp.Client
	var publisher adapters.Publisher
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend: adapters.NewSQLiteAdapter(sqliteRepo, publisher),
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					errs = append(errs, fmt.Errorf("amqp: %w", err))
				}
			}
			if err := sqliteRepo.Close(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
			if len(errs) > 0 {
				return fmt.Errorf("close sqlite backend: %v", errs)
			}
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	if config.Sheets.SpreadsheetID != "" {
		if err := cli.EnsureHeaders(ctx); err != nil {
			// requests will surface the same problem with a hint
			f.logger.Warn("Could not verify sheet headers", "error", err)
		}
	}

	f.logger.Info("Initialized Google Sheets backend",
		"configured", config.Sheets.SpreadsheetID != "")

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized in-memory backend, data is lost on restart")
	return &BackendResult{Backend: memory.New()}, nil
}
