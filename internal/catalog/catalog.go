// Package catalog loads the basket reference data (cesta básica animal):
// which items make up the basket for each age/size combination.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"precos/internal/core"
)

// Catalog is the read-only item reference, loaded once at process start.
type Catalog struct {
	entries []core.CatalogEntry
}

// Load reads the catalog CSV (columns Porte, Idade, Categoria, Item,
// Descrição). A missing or unreadable file is fatal to the session: without
// the catalog no combination can be offered.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads catalog rows from r. Exported separately so tests can feed
// in-memory CSV data.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var entries []core.CatalogEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		entries = append(entries, core.CatalogEntry{
			Combination: core.Combination{
				AgeClass:  strings.TrimSpace(rec[col.idade]),
				SizeClass: strings.TrimSpace(rec[col.porte]),
			},
			Category:    strings.TrimSpace(rec[col.categoria]),
			Item:        strings.TrimSpace(rec[col.item]),
			Description: strings.TrimSpace(rec[col.descricao]),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}
	return &Catalog{entries: entries}, nil
}

type columns struct {
	porte, idade, categoria, item, descricao int
}

func columnIndex(header []string) (columns, error) {
	col := columns{porte: -1, idade: -1, categoria: -1, item: -1, descricao: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "porte":
			col.porte = i
		case "idade":
			col.idade = i
		case "categoria":
			col.categoria = i
		case "item":
			col.item = i
		case "descrição", "descricao":
			col.descricao = i
		}
	}
	if col.porte < 0 || col.idade < 0 || col.categoria < 0 || col.item < 0 || col.descricao < 0 {
		return col, fmt.Errorf("catalog header missing required columns: %v", header)
	}
	return col, nil
}

// ItemsFor returns the catalog entries for the given combination, matching
// both classifiers case-insensitively, in catalog file order.
func (c *Catalog) ItemsFor(ageClass, sizeClass string) []core.CatalogEntry {
	var out []core.CatalogEntry
	for _, e := range c.entries {
		if e.Combination.Matches(ageClass, sizeClass) {
			out = append(out, e)
		}
	}
	return out
}

// Combinations returns the distinct basket variants, capitalization-normalized
// and sorted by display label.
func (c *Catalog) Combinations() []core.Combination {
	seen := make(map[core.Combination]struct{})
	var out []core.Combination
	for _, e := range c.entries {
		n := e.Combination.Normalized()
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}

// Len returns the total number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
