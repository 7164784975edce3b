package service

import (
	"sort"

	"pos-analytics/internal/models"
)

// PairKey identifies an unordered item pair. A is always the
// lexicographically smaller name, so (x,y) and (y,x) share one entry.
type PairKey struct {
	A, B string
}

// MakePairKey orders the two names into a canonical key
func MakePairKey(x, y string) PairKey {
	if x > y {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// CooccurrenceCounts holds the pairwise and per-item basket counts for
// one filtered basket collection
type CooccurrenceCounts struct {
	Pairs        map[PairKey]int
	Presence     map[string]int
	TotalBaskets int
}

// ComputePairCounts scans the baskets once, counting for every item the
// baskets containing it and for every unordered pair the baskets
// containing both. Items are re-deduplicated per basket rather than
// trusting the builder, so a hand-built basket with repeats still counts
// each item once.
func ComputePairCounts(baskets []Basket) CooccurrenceCounts {
	counts := CooccurrenceCounts{
		Pairs:        make(map[PairKey]int),
		Presence:     make(map[string]int),
		TotalBaskets: len(baskets),
	}

	for _, b := range baskets {
		distinct := make([]string, 0, len(b.Items))
		seen := make(map[string]bool, len(b.Items))
		for _, item := range b.Items {
			if !seen[item] {
				seen[item] = true
				distinct = append(distinct, item)
			}
		}

		for _, item := range distinct {
			counts.Presence[item]++
		}
		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				counts.Pairs[MakePairKey(distinct[i], distinct[j])]++
			}
		}
	}
	return counts
}

// ConditionalProbability returns P(other | given) as a percentage: of the
// baskets containing given, the share that also contain other. Unknown
// items and zero presence yield 0.
func (c CooccurrenceCounts) ConditionalProbability(given, other string) float64 {
	presence := c.Presence[given]
	if presence == 0 {
		return 0
	}
	return 100 * float64(c.Pairs[MakePairKey(given, other)]) / float64(presence)
}

// PairReport returns the topN most frequent pairs with both conditional
// directions. Ties are broken by pair name for stable output.
func (c CooccurrenceCounts) PairReport(topN int) []models.PairInsight {
	pairs := make([]models.PairInsight, 0, len(c.Pairs))
	for key, count := range c.Pairs {
		pairs = append(pairs, models.PairInsight{
			ItemA:      key.A,
			ItemB:      key.B,
			Count:      count,
			PctAGivenB: c.ConditionalProbability(key.B, key.A),
			PctBGivenA: c.ConditionalProbability(key.A, key.B),
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].ItemA != pairs[j].ItemA {
			return pairs[i].ItemA < pairs[j].ItemA
		}
		return pairs[i].ItemB < pairs[j].ItemB
	})

	if topN > 0 && len(pairs) > topN {
		pairs = pairs[:topN]
	}
	return pairs
}

// ItemReport lists, for one item, every co-purchased item with its
// conditional probability, strongest first
func (c CooccurrenceCounts) ItemReport(item string, topN int) models.ItemReport {
	report := models.ItemReport{
		Item:          item,
		Presence:      c.Presence[item],
		Probabilities: []models.ItemProbability{},
	}
	if report.Presence == 0 {
		report.InsufficientData = true
		return report
	}

	for key, count := range c.Pairs {
		var other string
		switch item {
		case key.A:
			other = key.B
		case key.B:
			other = key.A
		default:
			continue
		}
		report.Probabilities = append(report.Probabilities, models.ItemProbability{
			OtherItem: other,
			Together:  count,
			Pct:       c.ConditionalProbability(item, other),
		})
	}

	sort.Slice(report.Probabilities, func(i, j int) bool {
		pi, pj := report.Probabilities[i], report.Probabilities[j]
		if pi.Pct != pj.Pct {
			return pi.Pct > pj.Pct
		}
		return pi.OtherItem < pj.OtherItem
	})

	if topN > 0 && len(report.Probabilities) > topN {
		report.Probabilities = report.Probabilities[:topN]
	}
	return report
}
