package storage

import (
	"context"
	"path/filepath"
	"testing"

	"precos/internal/core"
)

func testRow(item string, cents int64) core.PriceObservation {
	return core.PriceObservation{
		Submitter:   "Maria Silva",
		Combination: core.Combination{AgeClass: "Adulto", SizeClass: "Pequeno"},
		Category:    "Alimentação",
		Item:        item,
		UnitPrice:   core.Money{Cents: cents},
		ObservedAt:  core.NewDate(2024, 1, 1),
		Location:    "Loja X",
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "precos.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("fresh database should be empty, got %d rows", len(rows))
	}
}

func TestAppendNewestFirstAcrossBatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []core.PriceObservation{testRow("Ração", 1550), testRow("Areia", 900)}
	second := []core.PriceObservation{testRow("Shampoo", 2300), testRow("Vermífugo", 1200)}
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The later batch sorts first, and each batch keeps its own order.
	want := []string{"Shampoo", "Vermífugo", "Ração", "Areia"}
	if len(rows) != len(want) {
		t.Fatalf("Load returned %d rows, want %d", len(rows), len(want))
	}
	for i, item := range want {
		if rows[i].Item != item {
			t.Errorf("rows[%d].Item = %q, want %q", i, rows[i].Item, item)
		}
	}
}

func TestAppendEmptyIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, []core.PriceObservation{testRow("Ração", 1550)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, nil); err != nil {
		t.Fatalf("empty Append: %v", err)
	}

	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty append must not change the ledger, got %d rows", len(rows))
	}
}

func TestAppendRejectsInvalidRowAtomically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	batch := []core.PriceObservation{
		testRow("Ração", 1550),
		testRow("Areia", 0), // zero price must never reach the ledger
	}
	if err := store.Append(ctx, batch); err == nil {
		t.Fatal("Append should reject a batch containing a zero-price row")
	}

	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("failed append must leave the ledger unchanged, got %d rows", len(rows))
	}
}

func TestRoundTripPreservesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := testRow("Ração", 1550)
	if err := store.Append(ctx, []core.PriceObservation{in}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := rows[0]
	if got.Submitter != in.Submitter ||
		got.Combination != in.Combination ||
		got.Category != in.Category ||
		got.Item != in.Item ||
		got.UnitPrice != in.UnitPrice ||
		got.ObservedAt.String() != in.ObservedAt.String() ||
		got.Location != in.Location {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, in)
	}
}
