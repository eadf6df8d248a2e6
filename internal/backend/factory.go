package backend

import (
	"fmt"
	"log/slog"

	"precos/internal/ledger/csvfile"
	"precos/internal/ledger/memory"
	"precos/internal/log"
	"precos/internal/storage"
)

// Factory builds ledger stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger.With(log.FieldComponent, log.ComponentLedger)}
}

// CreateLedger builds the configured ledger store.
func (f *Factory) CreateLedger(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case CSVBackend:
		store, err := csvfile.Open(cfg.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("initialize csv ledger: %w", err)
		}
		f.logger.Info("Initialized CSV ledger backend", "path", cfg.CSVPath)
		return &Result{Store: store}, nil

	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite ledger: %w", err)
		}
		f.logger.Info("Initialized SQLite ledger backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory ledger backend")
		return &Result{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Type)
	}
}
