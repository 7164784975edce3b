package service

import (
	"sort"
	"strings"

	"pos-analytics/internal/models"
)

// itemsetKey is the canonical map key for a sorted itemset
func itemsetKey(items []string) string {
	return strings.Join(items, "\x1f")
}

// MiningResult holds the frequent itemsets plus a support lookup keyed by
// canonical itemset, which the rule generator needs for antecedent and
// consequent supports.
type MiningResult struct {
	Itemsets     []models.FrequentItemset
	SupportByKey map[string]float64
	TotalBaskets int
}

// MineFrequentItemsets runs a level-wise Apriori search over the baskets.
// Level 1 keeps every item whose basket share meets minSupport; each
// later level joins surviving (k-1)-itemsets that agree on their first
// k-2 items, prunes candidates with any infrequent (k-1)-subset, and
// counts the survivors with a full containment scan. The search stops
// when a level produces nothing.
func MineFrequentItemsets(baskets []Basket, minSupport float64) MiningResult {
	result := MiningResult{
		Itemsets:     []models.FrequentItemset{},
		SupportByKey: make(map[string]float64),
		TotalBaskets: len(baskets),
	}
	if len(baskets) == 0 {
		return result
	}
	total := float64(len(baskets))

	// Basket membership sets for containment scans
	sets := make([]map[string]bool, len(baskets))
	presence := make(map[string]int)
	for i, b := range baskets {
		sets[i] = make(map[string]bool, len(b.Items))
		for _, item := range b.Items {
			if !sets[i][item] {
				sets[i][item] = true
				presence[item]++
			}
		}
	}

	// Level 1
	level := [][]string{}
	frequent := make(map[string]bool)
	items := make([]string, 0, len(presence))
	for item := range presence {
		items = append(items, item)
	}
	sort.Strings(items)

	for _, item := range items {
		support := float64(presence[item]) / total
		if support >= minSupport {
			set := []string{item}
			level = append(level, set)
			frequent[itemsetKey(set)] = true
			result.SupportByKey[itemsetKey(set)] = support
			result.Itemsets = append(result.Itemsets, models.FrequentItemset{
				Items:   set,
				Support: support,
			})
		}
	}

	// Levels k > 1
	for len(level) > 1 {
		candidates := generateCandidates(level, frequent)

		next := [][]string{}
		for _, cand := range candidates {
			count := 0
			for _, set := range sets {
				if containsAll(set, cand) {
					count++
				}
			}
			support := float64(count) / total
			if support >= minSupport {
				next = append(next, cand)
				frequent[itemsetKey(cand)] = true
				result.SupportByKey[itemsetKey(cand)] = support
				result.Itemsets = append(result.Itemsets, models.FrequentItemset{
					Items:   cand,
					Support: support,
				})
			}
		}

		level = next
	}

	return result
}

// generateCandidates joins sorted k-itemsets sharing their first k-1
// items, then prunes any candidate with an infrequent k-subset
// (anti-monotonicity: no superset of an infrequent set can be frequent).
func generateCandidates(level [][]string, frequent map[string]bool) [][]string {
	candidates := [][]string{}
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i], level[j]
			k := len(a)
			if !equalPrefix(a, b, k-1) {
				continue
			}

			cand := make([]string, k+1)
			copy(cand, a)
			if a[k-1] < b[k-1] {
				cand[k-1], cand[k] = a[k-1], b[k-1]
			} else {
				cand[k-1], cand[k] = b[k-1], a[k-1]
			}

			if allSubsetsFrequent(cand, frequent) {
				candidates = append(candidates, cand)
			}
		}
	}
	return candidates
}

func equalPrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent checks every subset obtained by dropping one element
func allSubsetsFrequent(cand []string, frequent map[string]bool) bool {
	sub := make([]string, 0, len(cand)-1)
	for drop := range cand {
		sub = sub[:0]
		for i, item := range cand {
			if i != drop {
				sub = append(sub, item)
			}
		}
		if !frequent[itemsetKey(sub)] {
			return false
		}
	}
	return true
}

func containsAll(set map[string]bool, items []string) bool {
	for _, item := range items {
		if !set[item] {
			return false
		}
	}
	return true
}
