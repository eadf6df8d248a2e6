// Package stats derives summary statistics from the price ledger. Every
// aggregate is a pure function of a ledger snapshot; nothing is cached, the
// ledger is small and append-only.
package stats

import (
	"context"
	"fmt"
	"sort"

	"precos/internal/core"
	"precos/internal/ledger"
)

// DatedMean is one point of a per-category time series.
type DatedMean struct {
	Date      core.Date
	MeanCents float64
}

// Aggregator reads the ledger fresh on every call.
type Aggregator struct {
	store ledger.Store
}

func New(store ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

func (a *Aggregator) load(ctx context.Context) ([]core.PriceObservation, error) {
	rows, err := a.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return rows, nil
}

// MeanPrice returns the arithmetic mean unit price in centavos across all
// rows. ok is false when the ledger is empty.
func (a *Aggregator) MeanPrice(ctx context.Context) (mean float64, ok bool, err error) {
	rows, err := a.load(ctx)
	if err != nil {
		return 0, false, err
	}
	mean, ok = MeanPriceCents(rows)
	return mean, ok, nil
}

// MostFrequentItem returns the item name occurring in the most rows.
func (a *Aggregator) MostFrequentItem(ctx context.Context) (item string, ok bool, err error) {
	rows, err := a.load(ctx)
	if err != nil {
		return "", false, err
	}
	item, ok = MostFrequentItem(rows)
	return item, ok, nil
}

// PriceDistributionByCategory maps each category to its unit prices in
// ledger order, for box-plot style summarization downstream.
func (a *Aggregator) PriceDistributionByCategory(ctx context.Context) (map[string][]core.Money, error) {
	rows, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return DistributionByCategory(rows), nil
}

// MeanPriceOverTimeByCategory maps each category to its per-date mean
// prices, sorted by date ascending.
func (a *Aggregator) MeanPriceOverTimeByCategory(ctx context.Context) (map[string][]DatedMean, error) {
	rows, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return MeanOverTimeByCategory(rows), nil
}

// Count returns the total number of ledger rows.
func (a *Aggregator) Count(ctx context.Context) (int, error) {
	rows, err := a.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// MeanPriceCents computes the mean unit price in centavos. The mean keeps
// fractional centavos; rows themselves stay integral.
func MeanPriceCents(rows []core.PriceObservation) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	var sum int64
	for _, r := range rows {
		sum += r.UnitPrice.Cents
	}
	return float64(sum) / float64(len(rows)), true
}

// MostFrequentItem returns the modal item name. Ties resolve to the item
// encountered first in ledger iteration order, so the result is
// deterministic for a fixed ledger.
func MostFrequentItem(rows []core.PriceObservation) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range rows {
		if counts[r.Item] == 0 {
			order = append(order, r.Item)
		}
		counts[r.Item]++
	}
	best := order[0]
	for _, item := range order {
		if counts[item] > counts[best] {
			best = item
		}
	}
	return best, true
}

// DistributionByCategory groups unit prices by category, preserving ledger
// iteration order within each category.
func DistributionByCategory(rows []core.PriceObservation) map[string][]core.Money {
	out := make(map[string][]core.Money)
	for _, r := range rows {
		out[r.Category] = append(out[r.Category], r.UnitPrice)
	}
	return out
}

// MeanOverTimeByCategory groups rows by (category, observed date) and
// returns each category's series sorted by date ascending.
func MeanOverTimeByCategory(rows []core.PriceObservation) map[string][]DatedMean {
	type key struct {
		category string
		date     string
	}
	sums := make(map[key]int64)
	counts := make(map[key]int)
	dates := make(map[string]map[string]core.Date) // category -> date string -> date
	for _, r := range rows {
		k := key{category: r.Category, date: r.ObservedAt.String()}
		sums[k] += r.UnitPrice.Cents
		counts[k]++
		if dates[r.Category] == nil {
			dates[r.Category] = make(map[string]core.Date)
		}
		dates[r.Category][k.date] = r.ObservedAt
	}

	out := make(map[string][]DatedMean, len(dates))
	for category, byDate := range dates {
		series := make([]DatedMean, 0, len(byDate))
		for ds, d := range byDate {
			k := key{category: category, date: ds}
			series = append(series, DatedMean{
				Date:      d,
				MeanCents: float64(sums[k]) / float64(counts[k]),
			})
		}
		sort.Slice(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date.Time)
		})
		out[category] = series
	}
	return out
}
