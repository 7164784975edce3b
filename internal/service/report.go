package service

import (
	"fmt"
	"sort"
	"strings"

	"pos-analytics/internal/models"
)

// Time bucket options for the intra-day series
const (
	BucketHour     = "hour"
	BucketHalfHour = "halfhour"
)

// ReportConfig carries the tunables every report request may override
type ReportConfig struct {
	MinSupport    float64
	MinConfidence float64
	TopNRankings  int
	TopNPairs     int
	TimeBucket    string
}

// DefaultConfig mirrors the dashboard defaults
func DefaultConfig() ReportConfig {
	return ReportConfig{
		MinSupport:    0.02,
		MinConfidence: 0.2,
		TopNRankings:  20,
		TopNPairs:     30,
		TimeBucket:    BucketHour,
	}
}

type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// GenerateReport runs the full pipeline over an already-filtered
// line-item view: KPIs and rankings straight off the rows, then baskets,
// co-occurrence, itemset mining, and rule generation. Everything is
// recomputed per call; nothing is cached across filter changes.
func (s *ReportService) GenerateReport(items []models.LineItem, cfg ReportConfig) models.Report {
	baskets := BuildBaskets(items)

	report := models.Report{
		KPIs:          s.ComputeKPIs(items),
		BasketMetrics: s.ComputeBasketMetrics(items),
		Trends:        s.ComputeTrends(items, cfg.TimeBucket),
		Rankings:      s.ComputeRankings(items, cfg.TopNRankings),
	}

	if len(baskets) == 0 {
		report.Baskets = models.BasketAnalysis{
			Itemsets:         []models.FrequentItemset{},
			Rules:            []models.AssociationRule{},
			InsufficientData: true,
		}
		report.Pairs = models.PairReport{
			Pairs:            []models.PairInsight{},
			InsufficientData: true,
		}
		return report
	}

	mining := MineFrequentItemsets(baskets, cfg.MinSupport)
	report.Baskets = GenerateRules(mining, cfg.MinConfidence)

	counts := ComputePairCounts(baskets)
	report.Pairs = models.PairReport{
		Pairs:        counts.PairReport(cfg.TopNPairs),
		TotalBaskets: counts.TotalBaskets,
	}

	return report
}

// ComputeKPIs sums over the raw line-items. Duplicate item names within
// one bill keep their full qty and revenue here; only basket analysis
// collapses them.
func (s *ReportService) ComputeKPIs(items []models.LineItem) models.KPIs {
	kpis := models.KPIs{}
	bills := make(map[models.TransactionKey]bool)
	names := make(map[string]bool)

	for _, li := range items {
		kpis.TotalSales += li.ItemTotal
		kpis.TotalQty += li.Qty
		bills[models.TransactionKey{PosName: li.PosName, TranNo: li.TranNo}] = true
		names[li.ItemName] = true
	}

	kpis.TotalBills = len(bills)
	kpis.UniqueItems = len(names)
	return kpis
}

// ComputeBasketMetrics averages bill totals and bill quantities. Zero
// bills yields zero metrics, never a division error.
func (s *ReportService) ComputeBasketMetrics(items []models.LineItem) models.BasketMetrics {
	type billAgg struct {
		total float64
		qty   float64
	}
	bills := make(map[models.TransactionKey]*billAgg)

	for _, li := range items {
		key := models.TransactionKey{PosName: li.PosName, TranNo: li.TranNo}
		if bills[key] == nil {
			bills[key] = &billAgg{}
		}
		bills[key].total += li.ItemTotal
		bills[key].qty += li.Qty
	}

	if len(bills) == 0 {
		return models.BasketMetrics{}
	}

	sumTotal := 0.0
	sumQty := 0.0
	for _, b := range bills {
		sumTotal += b.total
		sumQty += b.qty
	}

	n := float64(len(bills))
	return models.BasketMetrics{
		AvgBasketValue: sumTotal / n,
		AvgBasketSize:  sumQty / n,
	}
}

// ComputeTrends builds the daily series and the intra-day bucket series.
// Rows without a parsed transaction date are excluded from both but are
// still present in KPIs and basket analysis.
func (s *ReportService) ComputeTrends(items []models.LineItem, bucket string) models.Trends {
	type agg struct {
		sales float64
		bills map[models.TransactionKey]bool
	}
	daily := make(map[string]*agg)
	buckets := make(map[string]*agg)

	add := func(m map[string]*agg, label string, li models.LineItem) {
		if m[label] == nil {
			m[label] = &agg{bills: make(map[models.TransactionKey]bool)}
		}
		m[label].sales += li.ItemTotal
		m[label].bills[models.TransactionKey{PosName: li.PosName, TranNo: li.TranNo}] = true
	}

	for _, li := range items {
		if !li.HasDate() {
			continue
		}
		add(daily, li.TranDate.Format("2006-01-02"), li)
		add(buckets, bucketLabel(li, bucket), li)
	}

	trends := models.Trends{
		Daily:   []models.TrendPoint{},
		Buckets: []models.BucketPoint{},
	}

	for date, a := range daily {
		trends.Daily = append(trends.Daily, models.TrendPoint{
			Date:       date,
			TotalSales: a.sales,
			BillCount:  len(a.bills),
		})
	}
	sort.Slice(trends.Daily, func(i, j int) bool {
		return trends.Daily[i].Date < trends.Daily[j].Date
	})

	for label, a := range buckets {
		trends.Buckets = append(trends.Buckets, models.BucketPoint{
			Label:      label,
			TotalSales: a.sales,
			BillCount:  len(a.bills),
		})
	}
	sort.Slice(trends.Buckets, func(i, j int) bool {
		return trends.Buckets[i].Label < trends.Buckets[j].Label
	})

	trends.Trendline = FitTrendline(trends.Daily)
	return trends
}

func bucketLabel(li models.LineItem, bucket string) string {
	hour := li.TranDate.Hour()
	if bucket == BucketHalfHour && li.TranDate.Minute() >= 30 {
		return fmt.Sprintf("%02d:30", hour)
	}
	return fmt.Sprintf("%02d:00", hour)
}

// ComputeRankings builds the POS-wise and item-wise sales tables. Fast
// movers are the topN items by revenue, slow movers the bottom N.
func (s *ReportService) ComputeRankings(items []models.LineItem, topN int) models.Rankings {
	posTotals := make(map[string]float64)
	itemAgg := make(map[string]*models.ItemSales)

	for _, li := range items {
		posTotals[li.PosName] += li.ItemTotal
		if itemAgg[li.ItemName] == nil {
			itemAgg[li.ItemName] = &models.ItemSales{ItemName: li.ItemName}
		}
		itemAgg[li.ItemName].TotalQty += li.Qty
		itemAgg[li.ItemName].TotalSales += li.ItemTotal
	}

	rankings := models.Rankings{
		ItemSales:  []models.ItemSales{},
		FastMovers: []models.ItemSales{},
		SlowMovers: []models.ItemSales{},
		PosSales:   []models.PosSales{},
	}

	for pos, total := range posTotals {
		rankings.PosSales = append(rankings.PosSales, models.PosSales{
			PosName:    pos,
			TotalSales: total,
		})
	}
	sort.Slice(rankings.PosSales, func(i, j int) bool {
		pi, pj := rankings.PosSales[i], rankings.PosSales[j]
		if pi.TotalSales != pj.TotalSales {
			return pi.TotalSales > pj.TotalSales
		}
		return pi.PosName < pj.PosName
	})

	for _, agg := range itemAgg {
		rankings.ItemSales = append(rankings.ItemSales, *agg)
	}
	sort.Slice(rankings.ItemSales, func(i, j int) bool {
		ii, ij := rankings.ItemSales[i], rankings.ItemSales[j]
		if ii.TotalSales != ij.TotalSales {
			return ii.TotalSales > ij.TotalSales
		}
		return ii.ItemName < ij.ItemName
	})

	n := topN
	if n <= 0 || n > len(rankings.ItemSales) {
		n = len(rankings.ItemSales)
	}
	rankings.FastMovers = append(rankings.FastMovers, rankings.ItemSales[:n]...)
	rankings.SlowMovers = append(rankings.SlowMovers, rankings.ItemSales[len(rankings.ItemSales)-n:]...)

	return rankings
}

// SearchItems returns the item sales rows whose name contains the query,
// case-insensitively
func (s *ReportService) SearchItems(items []models.LineItem, query string) []models.ItemSales {
	rankings := s.ComputeRankings(items, 0)
	matches := []models.ItemSales{}
	for _, row := range rankings.ItemSales {
		if strings.Contains(strings.ToLower(row.ItemName), strings.ToLower(query)) {
			matches = append(matches, row)
		}
	}
	return matches
}
