package service

import (
	"sort"
	"strings"

	"pos-analytics/internal/models"
)

// GenerateRules derives association rules from the mined itemsets. For
// every frequent itemset of size >= 2, every non-empty proper subset
// becomes an antecedent with the remainder as consequent; rules below
// minConfidence are dropped. Lift compares the rule's confidence with the
// consequent's baseline support.
func GenerateRules(mining MiningResult, minConfidence float64) models.BasketAnalysis {
	analysis := models.BasketAnalysis{
		Itemsets:     mining.Itemsets,
		Rules:        []models.AssociationRule{},
		TotalBaskets: mining.TotalBaskets,
	}
	if len(mining.Itemsets) == 0 {
		analysis.InsufficientData = true
		return analysis
	}

	for _, fi := range mining.Itemsets {
		n := len(fi.Items)
		if n < 2 {
			continue
		}

		// Enumerate non-empty proper subsets by bitmask
		for mask := 1; mask < (1<<n)-1; mask++ {
			antecedent := []string{}
			consequent := []string{}
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					antecedent = append(antecedent, fi.Items[i])
				} else {
					consequent = append(consequent, fi.Items[i])
				}
			}

			antSupport := mining.SupportByKey[itemsetKey(antecedent)]
			conSupport := mining.SupportByKey[itemsetKey(consequent)]
			if antSupport == 0 || conSupport == 0 {
				// Subsets of a frequent itemset are always frequent, so
				// both supports must be present; guard regardless.
				continue
			}

			confidence := fi.Support / antSupport
			if confidence < minConfidence {
				continue
			}

			analysis.Rules = append(analysis.Rules, models.AssociationRule{
				Antecedent: antecedent,
				Consequent: consequent,
				Support:    fi.Support,
				Confidence: confidence,
				Lift:       confidence / conSupport,
			})
		}
	}

	sort.Slice(analysis.Rules, func(i, j int) bool {
		ri, rj := analysis.Rules[i], analysis.Rules[j]
		if ri.Confidence != rj.Confidence {
			return ri.Confidence > rj.Confidence
		}
		if ri.Lift != rj.Lift {
			return ri.Lift > rj.Lift
		}
		return strings.Join(ri.Antecedent, ", ") < strings.Join(rj.Antecedent, ", ")
	})

	return analysis
}
