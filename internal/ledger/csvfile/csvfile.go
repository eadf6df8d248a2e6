// Package csvfile persists the price ledger as the shared CSV file volunteers
// and coordinators already exchange (dados_precos.csv layout).
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"precos/internal/core"
	"precos/internal/ledger"
)

// Header is the persisted column layout, newest rows first.
var Header = []string{
	"Código do Usuário",
	"Porte",
	"Idade",
	"Categoria",
	"Item",
	"Preço Unitário (R$)",
	"Data da Consulta",
	"Local da Consulta",
}

// Store is a file-backed ledger. Appends rewrite the whole file through a
// temp-file-then-rename cycle so a crash mid-write never leaves a truncated
// ledger behind.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ ledger.Store = (*Store)(nil)

// Open prepares the ledger file, creating it with the header when absent.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	s := &Store{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("initialize ledger file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat ledger file: %w", err)
	}
	return s, nil
}

// Load reads every row of the ledger, newest-first as persisted.
func (s *Store) Load(ctx context.Context) ([]core.PriceObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) ([]core.PriceObservation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	var rows []core.PriceObservation
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger row: %w", err)
		}
		row, err := parseRow(rec)
		if err != nil {
			// A malformed row makes the whole snapshot suspect.
			return nil, fmt.Errorf("ledger row %v: %w", rec, err)
		}
		rows = append(rows, row)
	}
	slog.DebugContext(ctx, "Ledger loaded", "path", s.path, "rows", len(rows))
	return rows, nil
}

// Append prepends rows ahead of the existing ones and replaces the durable
// snapshot atomically. An empty append leaves the file untouched.
func (s *Store) Append(ctx context.Context, rows []core.PriceObservation) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("invalid ledger row: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked(ctx)
	if err != nil {
		return fmt.Errorf("load ledger before append: %w", err)
	}
	all := make([]core.PriceObservation, 0, len(rows)+len(existing))
	all = append(all, rows...)
	all = append(all, existing...)

	if err := s.writeAll(all); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger rows appended",
		"path", s.path, "new_rows", len(rows), "total_rows", len(all))
	return nil
}

// writeAll writes the full snapshot to a temp file in the same directory
// and renames it over the ledger. Rename is atomic on POSIX filesystems.
func (s *Store) writeAll(rows []core.PriceObservation) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op when the rename already succeeded.
		_ = os.Remove(tmpName)
	}()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(formatRow(row)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func formatRow(o core.PriceObservation) []string {
	return []string{
		o.Submitter,
		o.Combination.SizeClass,
		o.Combination.AgeClass,
		o.Category,
		o.Item,
		o.UnitPrice.DecimalString(),
		o.ObservedAt.String(),
		o.Location,
	}
}

func parseRow(rec []string) (core.PriceObservation, error) {
	if len(rec) != len(Header) {
		return core.PriceObservation{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(rec))
	}
	cents, err := core.ParsePriceToCents(rec[5])
	if err != nil {
		return core.PriceObservation{}, fmt.Errorf("parse price %q: %w", rec[5], err)
	}
	date, err := core.ParseDate(rec[6])
	if err != nil {
		return core.PriceObservation{}, fmt.Errorf("parse date %q: %w", rec[6], err)
	}
	return core.PriceObservation{
		Submitter: rec[0],
		Combination: core.Combination{
			SizeClass: strings.TrimSpace(rec[1]),
			AgeClass:  strings.TrimSpace(rec[2]),
		},
		Category:   rec[3],
		Item:       rec[4],
		UnitPrice:  core.Money{Cents: cents},
		ObservedAt: date,
		Location:   rec[7],
	}, nil
}
