// Package storage implements the ledger store on SQLite for deployments
// that outgrow the shared CSV file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"precos/internal/core"
	"precos/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns all observations newest-first. Insertion order stands in for
// the CSV file's prepend ordering: later inserts sort first.
func (s *SQLiteStore) Load(ctx context.Context) ([]core.PriceObservation, error) {
	const q = `
		SELECT submitter, size_class, age_class, category, item,
		       price_cents, observed_on, location
		FROM price_observations
		ORDER BY id DESC`

	dbRows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer dbRows.Close()

	var rows []core.PriceObservation
	for dbRows.Next() {
		var (
			o          core.PriceObservation
			observedOn string
		)
		if err := dbRows.Scan(&o.Submitter, &o.Combination.SizeClass, &o.Combination.AgeClass,
			&o.Category, &o.Item, &o.UnitPrice.Cents, &observedOn, &o.Location); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.ObservedAt, err = core.ParseDate(observedOn)
		if err != nil {
			return nil, fmt.Errorf("parse observed_on %q: %w", observedOn, err)
		}
		rows = append(rows, o)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return rows, nil
}

// Append inserts all rows in one transaction so a partial batch never
// becomes durable.
func (s *SQLiteStore) Append(ctx context.Context, rows []core.PriceObservation) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("invalid ledger row: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO price_observations
			(submitter, size_class, age_class, category, item, price_cents, observed_on, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// Insert in reverse so the batch keeps its order under ORDER BY id DESC.
	for i := len(rows) - 1; i >= 0; i-- {
		o := rows[i]
		if _, err := tx.ExecContext(ctx, q,
			o.Submitter, o.Combination.SizeClass, o.Combination.AgeClass,
			o.Category, o.Item, o.UnitPrice.Cents, o.ObservedAt.String(), o.Location); err != nil {
			return fmt.Errorf("insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Ledger rows appended to SQLite", "new_rows", len(rows))
	return nil
}
