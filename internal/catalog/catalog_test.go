package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Porte,Idade,Categoria,Item,Descrição
Pequeno,Adulto,Alimentação,Ração,Ração seca para adultos
Pequeno,Adulto,Higiene,Areia,Areia sanitária
pequeno,filhote,Alimentação,Ração Filhote,Ração para filhotes
Grande,Adulto,Alimentação,Ração,Ração seca para porte grande
`

func TestParseAndItemsFor(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}

	items := c.ItemsFor("ADULTO", "pequeno")
	if len(items) != 2 {
		t.Fatalf("ItemsFor(adulto, pequeno) = %d entries, want 2", len(items))
	}
	if items[0].Item != "Ração" || items[1].Item != "Areia" {
		t.Errorf("ItemsFor should preserve catalog order, got %q then %q", items[0].Item, items[1].Item)
	}
	if items[0].Category != "Alimentação" {
		t.Errorf("Category = %q, want Alimentação", items[0].Category)
	}

	if got := c.ItemsFor("idoso", "pequeno"); got != nil {
		t.Errorf("unknown combination should yield no entries, got %v", got)
	}
}

func TestCombinations(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	combos := c.Combinations()
	var labels []string
	for _, cb := range combos {
		labels = append(labels, cb.Label())
	}
	want := []string{"Adulto / Grande", "Adulto / Pequeno", "Filhote / Pequeno"}
	if len(labels) != len(want) {
		t.Fatalf("Combinations() = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Combinations()[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Load should fail for a missing catalog file")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cesta.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}

func TestParseRejectsMissingColumns(t *testing.T) {
	if _, err := Parse(strings.NewReader("Porte,Idade\nPequeno,Adulto\n")); err == nil {
		t.Error("Parse should reject a header without the required columns")
	}
}
