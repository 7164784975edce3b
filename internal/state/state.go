package state

import (
	"sort"
	"strings"
	"sync"
	"time"

	"pos-analytics/internal/models"
)

// Dataset represents a loaded POS transaction detail file
type Dataset struct {
	Items    []models.LineItem
	FileName string

	// Barcode → distinct item names seen under it. Built once at
	// ingestion, used by the barcode search endpoint.
	BarcodeIndex map[string][]string
}

// Filter is the request-scoped view predicate. Zero values mean
// "no constraint": empty PosName matches every register, zero From/To
// leave that bound open. Date bounds are inclusive.
type Filter struct {
	PosName string
	From    time.Time
	To      time.Time
}

// AppState holds the global application state
type AppState struct {
	mu sync.RWMutex
	ds *Dataset
}

// Global state instance
var State = &AppState{}

// SetDataset replaces the loaded dataset
func (s *AppState) SetDataset(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

// GetDataset retrieves the loaded dataset (nil if nothing loaded)
func (s *AppState) GetDataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// FilteredItems returns a fresh slice of the line-items matching f.
// The underlying rows are never mutated, so the returned view can feed a
// report computation without copying each row. Rows with an unparseable
// date pass date filters only when no date bound is set.
func (ds *Dataset) FilteredItems(f Filter) []models.LineItem {
	out := make([]models.LineItem, 0, len(ds.Items))
	for _, li := range ds.Items {
		if f.PosName != "" && li.PosName != f.PosName {
			continue
		}
		if !f.From.IsZero() || !f.To.IsZero() {
			if !li.HasDate() {
				continue
			}
			if !f.From.IsZero() && li.TranDate.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && li.TranDate.After(f.To) {
				continue
			}
		}
		out = append(out, li)
	}
	return out
}

// PosNames returns the distinct register names in first-seen order
func (ds *Dataset) PosNames() []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, li := range ds.Items {
		if !seen[li.PosName] {
			seen[li.PosName] = true
			names = append(names, li.PosName)
		}
	}
	return names
}

// SearchBarcodes returns barcode index entries whose barcode contains the
// query substring
func (ds *Dataset) SearchBarcodes(query string) []models.BarcodeMatch {
	matches := []models.BarcodeMatch{}
	for barcode, items := range ds.BarcodeIndex {
		if strings.Contains(barcode, query) {
			matches = append(matches, models.BarcodeMatch{
				Barcode:   barcode,
				ItemNames: items,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Barcode < matches[j].Barcode
	})
	return matches
}
