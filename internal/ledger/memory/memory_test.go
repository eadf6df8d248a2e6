package memory

import (
	"context"
	"testing"

	"precos/internal/core"
)

func row(item string) core.PriceObservation {
	return core.PriceObservation{
		Submitter:   "Maria Silva",
		Combination: core.Combination{AgeClass: "Adulto", SizeClass: "Pequeno"},
		Category:    "Alimentação",
		Item:        item,
		UnitPrice:   core.Money{Cents: 1000},
		ObservedAt:  core.NewDate(2024, 1, 1),
		Location:    "Loja X",
	}
}

func TestAppendAndLoadNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Append(ctx, []core.PriceObservation{row("A")}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, []core.PriceObservation{row("B")}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 2 || rows[0].Item != "B" || rows[1].Item != "A" {
		t.Errorf("rows not newest-first: %+v", rows)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Append(ctx, []core.PriceObservation{row("A")}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rows, _ := s.Load(ctx)
	rows[0].Item = "mutated"
	again, _ := s.Load(ctx)
	if again[0].Item != "A" {
		t.Error("Load must return an independent copy of the rows")
	}
}

func TestEmptyAppendIsNoOp(t *testing.T) {
	s := New()
	if err := s.Append(context.Background(), nil); err != nil {
		t.Fatalf("empty Append: %v", err)
	}
	if s.Len() != 0 {
		t.Error("empty append should not add rows")
	}
}
