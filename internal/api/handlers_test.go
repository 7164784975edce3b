package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-analytics/internal/analysis"
	"pos-analytics/internal/api"
	"pos-analytics/internal/models"
	"pos-analytics/internal/service"
	"pos-analytics/internal/state"

	"github.com/go-chi/chi/v5"
)

func newTestServer() *httptest.Server {
	handler := api.NewHandler(analysis.NewIngestService(), service.NewReportService())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return httptest.NewServer(r)
}

func loadFixture() {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	state.State.SetDataset(&state.Dataset{
		FileName: "fixture.csv",
		Items: []models.LineItem{
			{PosName: "POS1", TranNo: "1", ItemName: "Milk", Qty: 1, ItemTotal: 45, TranDate: day},
			{PosName: "POS1", TranNo: "1", ItemName: "Bread", Qty: 1, ItemTotal: 40, TranDate: day},
			{PosName: "POS2", TranNo: "1", ItemName: "Milk", Qty: 2, ItemTotal: 90, TranDate: day},
		},
		BarcodeIndex: map[string][]string{"8901": {"Milk"}},
	})
}

func TestGetReportFiltered(t *testing.T) {
	loadFixture()
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/report?pos_name=POS1")
	if err != nil {
		t.Fatalf("GET /api/report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if report.KPIs.TotalSales != 85 || report.KPIs.TotalBills != 1 {
		t.Errorf("filtered KPIs = %+v", report.KPIs)
	}
	if report.Baskets.InsufficientData {
		t.Error("basket analysis should have run")
	}
}

func TestGetReportNoData(t *testing.T) {
	state.State.SetDataset(nil)
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/report")
	if err != nil {
		t.Fatalf("GET /api/report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetItemReportRequiresItem(t *testing.T) {
	loadFixture()
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/basket/item")
	if err != nil {
		t.Fatalf("GET /api/basket/item: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetItemReport(t *testing.T) {
	loadFixture()
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/basket/item?item=Milk")
	if err != nil {
		t.Fatalf("GET /api/basket/item: %v", err)
	}
	defer resp.Body.Close()

	var report models.ItemReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if report.Presence != 2 {
		t.Errorf("Presence = %d, want 2", report.Presence)
	}
	if len(report.Probabilities) != 1 || report.Probabilities[0].OtherItem != "Bread" {
		t.Errorf("Probabilities = %+v", report.Probabilities)
	}
	// Bread appears in 1 of Milk's 2 baskets
	if report.Probabilities[0].Pct != 50 {
		t.Errorf("Pct = %f, want 50", report.Probabilities[0].Pct)
	}
}

func TestSearchBarcode(t *testing.T) {
	loadFixture()
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search/barcode?q=89")
	if err != nil {
		t.Fatalf("GET /api/search/barcode: %v", err)
	}
	defer resp.Body.Close()

	var matches []models.BarcodeMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(matches) != 1 || matches[0].Barcode != "8901" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestStatus(t *testing.T) {
	loadFixture()
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var status models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Loaded || status.Rows != 3 || status.Filename != "fixture.csv" {
		t.Errorf("status = %+v", status)
	}
}
