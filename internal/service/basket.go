package service

import (
	"sort"
	"strings"

	"pos-analytics/internal/models"
)

// Basket is the set of distinct items sold in one bill. Items are
// whitespace-trimmed, deduplicated, and kept sorted; multiplicity within
// a bill is deliberately dropped (quantity-weighted co-occurrence is out
// of scope).
type Basket struct {
	Key   models.TransactionKey
	Items []string
}

// BuildBaskets groups line-items by (pos_name, tran_no) into one basket
// per transaction, in first-seen transaction order. Empty input yields an
// empty collection.
func BuildBaskets(items []models.LineItem) []Basket {
	order := []models.TransactionKey{}
	sets := make(map[models.TransactionKey]map[string]bool)

	for _, li := range items {
		name := strings.TrimSpace(li.ItemName)
		if name == "" {
			continue
		}
		key := models.TransactionKey{PosName: li.PosName, TranNo: li.TranNo}
		if sets[key] == nil {
			sets[key] = make(map[string]bool)
			order = append(order, key)
		}
		sets[key][name] = true
	}

	baskets := make([]Basket, 0, len(order))
	for _, key := range order {
		items := make([]string, 0, len(sets[key]))
		for name := range sets[key] {
			items = append(items, name)
		}
		sort.Strings(items)
		baskets = append(baskets, Basket{Key: key, Items: items})
	}
	return baskets
}
