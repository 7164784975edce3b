package service_test

import (
	"reflect"
	"testing"
	"time"

	"pos-analytics/internal/models"
	"pos-analytics/internal/service"
)

func fixtureItems() []models.LineItem {
	day1 := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	day1pm := time.Date(2024, 3, 1, 17, 45, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 40, 0, 0, time.UTC)

	return []models.LineItem{
		{PosName: "POS1", TranNo: "1", ItemName: "Milk", Qty: 2, ItemTotal: 90, TranDate: day1},
		{PosName: "POS1", TranNo: "1", ItemName: "Bread", Qty: 1, ItemTotal: 40, TranDate: day1},
		{PosName: "POS1", TranNo: "2", ItemName: "Milk", Qty: 1, ItemTotal: 45, TranDate: day1pm},
		{PosName: "POS2", TranNo: "1", ItemName: "Eggs", Qty: 12, ItemTotal: 60, TranDate: day2},
		// Unparseable date: kept for KPIs, absent from trends
		{PosName: "POS2", TranNo: "2", ItemName: "Bread", Qty: 1, ItemTotal: 40},
	}
}

func TestComputeKPIs(t *testing.T) {
	svc := service.NewReportService()
	kpis := svc.ComputeKPIs(fixtureItems())

	want := models.KPIs{TotalSales: 275, TotalBills: 4, TotalQty: 17, UniqueItems: 3}
	if !reflect.DeepEqual(kpis, want) {
		t.Errorf("ComputeKPIs() = %+v, want %+v", kpis, want)
	}
}

func TestComputeKPIsEmpty(t *testing.T) {
	svc := service.NewReportService()
	kpis := svc.ComputeKPIs(nil)

	if !reflect.DeepEqual(kpis, models.KPIs{}) {
		t.Errorf("empty input KPIs = %+v, want zeros", kpis)
	}
}

func TestComputeBasketMetrics(t *testing.T) {
	svc := service.NewReportService()
	metrics := svc.ComputeBasketMetrics(fixtureItems())

	// Bill totals: 130, 45, 60, 40 → mean 68.75; bill qtys: 3, 1, 12, 1 → mean 4.25
	if !approx(metrics.AvgBasketValue, 68.75) {
		t.Errorf("AvgBasketValue = %f, want 68.75", metrics.AvgBasketValue)
	}
	if !approx(metrics.AvgBasketSize, 4.25) {
		t.Errorf("AvgBasketSize = %f, want 4.25", metrics.AvgBasketSize)
	}

	empty := svc.ComputeBasketMetrics(nil)
	if empty.AvgBasketValue != 0 || empty.AvgBasketSize != 0 {
		t.Errorf("zero bills must yield zero metrics, got %+v", empty)
	}
}

func TestComputeTrends(t *testing.T) {
	svc := service.NewReportService()
	trends := svc.ComputeTrends(fixtureItems(), service.BucketHour)

	wantDaily := []models.TrendPoint{
		{Date: "2024-03-01", TotalSales: 175, BillCount: 2},
		{Date: "2024-03-02", TotalSales: 60, BillCount: 1},
	}
	if !reflect.DeepEqual(trends.Daily, wantDaily) {
		t.Errorf("Daily = %+v, want %+v", trends.Daily, wantDaily)
	}

	// Hourly buckets: 09:00 (both 9am bills), 17:00
	wantBuckets := []models.BucketPoint{
		{Label: "09:00", TotalSales: 190, BillCount: 2},
		{Label: "17:00", TotalSales: 45, BillCount: 1},
	}
	if !reflect.DeepEqual(trends.Buckets, wantBuckets) {
		t.Errorf("Buckets = %+v, want %+v", trends.Buckets, wantBuckets)
	}
}

func TestComputeTrendsHalfHourBuckets(t *testing.T) {
	svc := service.NewReportService()
	trends := svc.ComputeTrends(fixtureItems(), service.BucketHalfHour)

	wantBuckets := []models.BucketPoint{
		{Label: "09:00", TotalSales: 130, BillCount: 1},
		{Label: "09:30", TotalSales: 60, BillCount: 1},
		{Label: "17:30", TotalSales: 45, BillCount: 1},
	}
	if !reflect.DeepEqual(trends.Buckets, wantBuckets) {
		t.Errorf("Buckets = %+v, want %+v", trends.Buckets, wantBuckets)
	}
}

func TestFitTrendline(t *testing.T) {
	daily := []models.TrendPoint{
		{Date: "2024-03-01", TotalSales: 100},
		{Date: "2024-03-02", TotalSales: 200},
		{Date: "2024-03-03", TotalSales: 300},
	}
	trend := service.FitTrendline(daily)

	if !approx(trend.Slope, 100) {
		t.Errorf("Slope = %f, want 100", trend.Slope)
	}
	if !approx(trend.RSquared, 1) {
		t.Errorf("RSquared = %f, want 1", trend.RSquared)
	}

	// Too few points: zero-valued fit, no crash
	short := service.FitTrendline(daily[:2])
	if short.Slope != 0 || short.RSquared != 0 {
		t.Errorf("short series fit = %+v, want zeros", short)
	}
}

func TestComputeRankings(t *testing.T) {
	svc := service.NewReportService()
	rankings := svc.ComputeRankings(fixtureItems(), 2)

	wantItems := []models.ItemSales{
		{ItemName: "Milk", TotalQty: 3, TotalSales: 135},
		{ItemName: "Bread", TotalQty: 2, TotalSales: 80},
		{ItemName: "Eggs", TotalQty: 12, TotalSales: 60},
	}
	if !reflect.DeepEqual(rankings.ItemSales, wantItems) {
		t.Errorf("ItemSales = %+v, want %+v", rankings.ItemSales, wantItems)
	}

	if len(rankings.FastMovers) != 2 || rankings.FastMovers[0].ItemName != "Milk" {
		t.Errorf("FastMovers = %+v", rankings.FastMovers)
	}
	if len(rankings.SlowMovers) != 2 || rankings.SlowMovers[1].ItemName != "Eggs" {
		t.Errorf("SlowMovers = %+v", rankings.SlowMovers)
	}

	wantPos := []models.PosSales{
		{PosName: "POS1", TotalSales: 175},
		{PosName: "POS2", TotalSales: 100},
	}
	if !reflect.DeepEqual(rankings.PosSales, wantPos) {
		t.Errorf("PosSales = %+v, want %+v", rankings.PosSales, wantPos)
	}
}

func TestSearchItems(t *testing.T) {
	svc := service.NewReportService()

	matches := svc.SearchItems(fixtureItems(), "mil")
	if len(matches) != 1 || matches[0].ItemName != "Milk" {
		t.Errorf("SearchItems(mil) = %+v", matches)
	}

	if got := svc.SearchItems(fixtureItems(), "noodles"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestGenerateReportFullPipeline(t *testing.T) {
	svc := service.NewReportService()
	cfg := service.DefaultConfig()
	cfg.MinSupport = 0.25

	report := svc.GenerateReport(fixtureItems(), cfg)

	if report.Baskets.InsufficientData {
		t.Error("basket analysis should have run with data loaded")
	}
	if report.Pairs.InsufficientData {
		t.Error("pair report should have run with data loaded")
	}
	if report.Pairs.TotalBaskets != 4 {
		t.Errorf("TotalBaskets = %d, want 4", report.Pairs.TotalBaskets)
	}

	// {Bread, Milk} appears in 1 of 4 baskets
	found := false
	for _, p := range report.Pairs.Pairs {
		if p.ItemA == "Bread" && p.ItemB == "Milk" && p.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Bread/Milk pair in report: %+v", report.Pairs.Pairs)
	}
}

func TestGenerateReportIdempotent(t *testing.T) {
	svc := service.NewReportService()
	cfg := service.DefaultConfig()

	first := svc.GenerateReport(fixtureItems(), cfg)
	second := svc.GenerateReport(fixtureItems(), cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("running the pipeline twice on the same view produced different reports")
	}
}

func TestGenerateReportEmptyInput(t *testing.T) {
	svc := service.NewReportService()
	report := svc.GenerateReport(nil, service.DefaultConfig())

	if !report.Baskets.InsufficientData {
		t.Error("empty input must mark basket analysis as insufficient data")
	}
	if !report.Pairs.InsufficientData {
		t.Error("empty input must mark the pair report as insufficient data")
	}
	if report.KPIs.TotalSales != 0 || report.KPIs.TotalBills != 0 {
		t.Errorf("empty input KPIs = %+v, want zeros", report.KPIs)
	}
	if len(report.Trends.Daily) != 0 {
		t.Errorf("empty input trends = %+v", report.Trends.Daily)
	}
}
