package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"precos/internal/core"
	"precos/internal/stats"
)

// generateRequestID returns a short random identifier for request tracing.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// sanitizeInput trims whitespace and strips control characters from
// user-supplied form values.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// formatReais renders centavos as a Brazilian currency string, e.g.
// 1550 -> "R$ 15,50".
func formatReais(cents float64) string {
	s := fmt.Sprintf("%.2f", cents/100)
	return "R$ " + strings.Replace(s, ".", ",", 1)
}

type categorySummaryView struct {
	Category string
	Count    int
	Min      string
	Median   string
	Max      string
}

type trendPointView struct {
	Date string
	Mean string
}

type categoryTrendView struct {
	Category string
	Points   []trendPointView
}

type statsView struct {
	Count      int
	MeanPrice  string
	TopItem    string
	Categories []categorySummaryView
	Trends     []categoryTrendView
}

// buildStatsView shapes aggregate results for the stats template. Category
// sections are sorted by name so renders are stable.
func buildStatsView(count int, mean float64, topItem string, dist map[string][]core.Money, trend map[string][]stats.DatedMean) statsView {
	v := statsView{
		Count:     count,
		MeanPrice: formatReais(mean),
		TopItem:   topItem,
	}

	categories := make([]string, 0, len(dist))
	for c := range dist {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		prices := dist[c]
		cents := make([]int64, len(prices))
		for i, p := range prices {
			cents[i] = p.Cents
		}
		sort.Slice(cents, func(i, j int) bool { return cents[i] < cents[j] })
		v.Categories = append(v.Categories, categorySummaryView{
			Category: c,
			Count:    len(cents),
			Min:      formatReais(float64(cents[0])),
			Median:   formatReais(medianCents(cents)),
			Max:      formatReais(float64(cents[len(cents)-1])),
		})
	}

	trendCategories := make([]string, 0, len(trend))
	for c := range trend {
		trendCategories = append(trendCategories, c)
	}
	sort.Strings(trendCategories)
	for _, c := range trendCategories {
		tv := categoryTrendView{Category: c}
		for _, p := range trend[c] {
			tv.Points = append(tv.Points, trendPointView{
				Date: p.Date.String(),
				Mean: formatReais(p.MeanCents),
			})
		}
		v.Trends = append(v.Trends, tv)
	}
	return v
}

// medianCents expects its input sorted ascending and non-empty.
func medianCents(sorted []int64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
