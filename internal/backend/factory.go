package backend

import (
	"context"
	"fmt"

	applog "fincontrol/internal/log"
	"fincontrol/internal/ports"
	gsheet "fincontrol/internal/sheets/google"
	"fincontrol/internal/storage"
	"fincontrol/internal/store/memory"
)

// SheetsOpener opens the Google Sheets store.
type SheetsOpener func(ctx context.Context, cfg Config) (ports.Store, error)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger     *applog.Logger
	openSheets SheetsOpener
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:     logger.WithComponent(applog.ComponentBackend),
		openSheets: openGoogleSheets,
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Type:    SQLiteBackend,
		Store:   repo,
		SQLite:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	store, err := f.openSheets(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &Result{Type: SheetsBackend, Store: store}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)

	return &Result{Type: MemoryBackend, Store: store}, nil
}

func openGoogleSheets(ctx context.Context, _ Config) (ports.Store, error) {
	cli, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	if err := cli.EnsureHeaders(ctx); err != nil {
		return nil, fmt.Errorf("ensure sheet headers: %w", err)
	}
	return cli, nil
}
