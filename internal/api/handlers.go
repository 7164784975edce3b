package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pos-analytics/internal/analysis"
	"pos-analytics/internal/models"
	"pos-analytics/internal/service"
	"pos-analytics/internal/state"

	"github.com/go-chi/chi/v5"
)

const (
	UploadDir   = "./uploads"
	MaxFileSize = 100 * 1024 * 1024 // 100MB
)

type Handler struct {
	IngestService *analysis.IngestService
	ReportService *service.ReportService
	CurrentDB     service.DataSource // Active DB connection
}

func NewHandler(ingest *analysis.IngestService, report *service.ReportService) *Handler {
	return &Handler{
		IngestService: ingest,
		ReportService: report,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	// Ingestion
	r.Post("/upload", h.Upload)
	r.Get("/status", h.GetStatus)
	r.Get("/preview", h.GetPreview)

	// DB ingestion path
	r.Post("/api/db/connect", h.ConnectDB)
	r.Get("/api/db/tables", h.ListTables)
	r.Post("/api/db/load", h.LoadTable)

	// Reports
	r.Get("/api/report", h.GetReport)
	r.Get("/api/kpis", h.GetKPIs)
	r.Get("/api/trends", h.GetTrends)
	r.Get("/api/rankings", h.GetRankings)
	r.Get("/api/basket/rules", h.GetBasketRules)
	r.Get("/api/basket/pairs", h.GetBasketPairs)
	r.Get("/api/basket/item", h.GetItemReport)

	// Search + filter helpers
	r.Get("/api/search/barcode", h.SearchBarcode)
	r.Get("/api/search/item", h.SearchItem)
	r.Get("/api/pos-names", h.GetPosNames)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Ingestion
// ============================================================================

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		http.Error(w, "Only CSV files are allowed", http.StatusBadRequest)
		return
	}

	os.MkdirAll(UploadDir, 0755)

	filePath := filepath.Join(UploadDir, filepath.Base(header.Filename))
	dst, err := os.Create(filePath)
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	ds, err := h.IngestService.LoadFile(filePath)
	if err != nil {
		os.Remove(filePath)
		var schemaErr *analysis.SchemaError
		if errors.As(err, &schemaErr) {
			http.Error(w, schemaErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to parse CSV: %v", err), http.StatusBadRequest)
		return
	}
	ds.FileName = header.Filename

	state.State.SetDataset(ds)

	resp := models.UploadResponse{
		Message:     fmt.Sprintf("File '%s' uploaded successfully", header.Filename),
		Rows:        len(ds.Items),
		ColumnNames: models.RequiredColumns,
	}

	writeJSON(w, resp)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ds := state.State.GetDataset()

	resp := models.StatusResponse{Loaded: ds != nil}
	if ds != nil {
		resp.Rows = len(ds.Items)
		resp.Filename = ds.FileName
	}

	writeJSON(w, resp)
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	rows := getIntParam(r, "rows", 10)

	ds, ok := h.requireDataset(w)
	if !ok {
		return
	}

	limit := rows
	if limit > len(ds.Items) {
		limit = len(ds.Items)
	}

	writeJSON(w, ds.Items[:limit])
}

// ============================================================================
// DB ingestion
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var config service.DataSourceConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	ds, err := service.NewDataSource(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ds.Connect(config); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	// Close previous if exists
	if h.CurrentDB != nil {
		h.CurrentDB.Close()
	}
	h.CurrentDB = ds

	writeJSON(w, map[string]string{"status": "connected"})
}

// ListTables returns tables from the connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	if h.CurrentDB == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := h.CurrentDB.ListTables()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"tables": tables})
}

// LoadTable fetches a transaction table from the connected DB and runs it
// through the same ingestion path as a CSV upload
func (h *Handler) LoadTable(w http.ResponseWriter, r *http.Request) {
	if h.CurrentDB == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req struct {
		TableName string `json:"table_name"`
		Limit     int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 100000
	}

	// Whitelist the table name against the live schema before it is
	// interpolated into the fetch query
	tables, err := h.CurrentDB.ListTables()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}
	known := false
	for _, t := range tables {
		if t == req.TableName {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, fmt.Sprintf("Unknown table: %s", req.TableName), http.StatusBadRequest)
		return
	}

	columns, rows, err := h.CurrentDB.FetchTable(req.TableName, req.Limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error fetching data: %v", err), http.StatusInternalServerError)
		return
	}

	ds, err := h.IngestService.LoadRows(columns, rows)
	if err != nil {
		var schemaErr *analysis.SchemaError
		if errors.As(err, &schemaErr) {
			http.Error(w, schemaErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, fmt.Sprintf("Error loading table: %v", err), http.StatusInternalServerError)
		return
	}
	ds.FileName = req.TableName

	state.State.SetDataset(ds)

	writeJSON(w, models.UploadResponse{
		Message:     fmt.Sprintf("Table '%s' loaded successfully", req.TableName),
		Rows:        len(ds.Items),
		ColumnNames: models.RequiredColumns,
	})
}

// ============================================================================
// Reports
// ============================================================================

// GetReport returns the full dashboard payload for the filtered view
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.ReportService.GenerateReport(items, cfg))
}

func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	items, _, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	resp := struct {
		KPIs          models.KPIs          `json:"kpis"`
		BasketMetrics models.BasketMetrics `json:"basket_metrics"`
	}{
		KPIs:          h.ReportService.ComputeKPIs(items),
		BasketMetrics: h.ReportService.ComputeBasketMetrics(items),
	}
	writeJSON(w, resp)
}

func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.ReportService.ComputeTrends(items, cfg.TimeBucket))
}

func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.ReportService.ComputeRankings(items, cfg.TopNRankings))
}

// GetBasketRules runs itemset mining and rule generation over the
// filtered view
func (h *Handler) GetBasketRules(w http.ResponseWriter, r *http.Request) {
	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	baskets := service.BuildBaskets(items)
	if len(baskets) == 0 {
		writeJSON(w, models.BasketAnalysis{
			Itemsets:         []models.FrequentItemset{},
			Rules:            []models.AssociationRule{},
			InsufficientData: true,
		})
		return
	}

	mining := service.MineFrequentItemsets(baskets, cfg.MinSupport)
	writeJSON(w, service.GenerateRules(mining, cfg.MinConfidence))
}

// GetBasketPairs returns the pairwise co-occurrence report
func (h *Handler) GetBasketPairs(w http.ResponseWriter, r *http.Request) {
	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	baskets := service.BuildBaskets(items)
	if len(baskets) == 0 {
		writeJSON(w, models.PairReport{
			Pairs:            []models.PairInsight{},
			InsufficientData: true,
		})
		return
	}

	counts := service.ComputePairCounts(baskets)
	writeJSON(w, models.PairReport{
		Pairs:        counts.PairReport(cfg.TopNPairs),
		TotalBaskets: counts.TotalBaskets,
	})
}

// GetItemReport returns what sells alongside one item
func (h *Handler) GetItemReport(w http.ResponseWriter, r *http.Request) {
	item := strings.TrimSpace(r.URL.Query().Get("item"))
	if item == "" {
		http.Error(w, "item parameter is required", http.StatusBadRequest)
		return
	}

	items, cfg, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	counts := service.ComputePairCounts(service.BuildBaskets(items))
	writeJSON(w, counts.ItemReport(item, cfg.TopNPairs))
}

// ============================================================================
// Search
// ============================================================================

func (h *Handler) SearchBarcode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	ds, ok := h.requireDataset(w)
	if !ok {
		return
	}

	writeJSON(w, ds.SearchBarcodes(query))
}

func (h *Handler) SearchItem(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	items, _, ok := h.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, h.ReportService.SearchItems(items, query))
}

func (h *Handler) GetPosNames(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.requireDataset(w)
	if !ok {
		return
	}

	writeJSON(w, map[string]interface{}{"pos_names": ds.PosNames()})
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) requireDataset(w http.ResponseWriter) (*state.Dataset, bool) {
	ds := state.State.GetDataset()
	if ds == nil {
		http.Error(w, "No transaction data loaded", http.StatusBadRequest)
		return nil, false
	}
	return ds, true
}

// filteredView resolves the request's filter and config parameters and
// returns the matching line-item view
func (h *Handler) filteredView(w http.ResponseWriter, r *http.Request) ([]models.LineItem, service.ReportConfig, bool) {
	ds, ok := h.requireDataset(w)
	if !ok {
		return nil, service.ReportConfig{}, false
	}

	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, service.ReportConfig{}, false
	}

	return ds.FilteredItems(filter), parseConfig(r), true
}

func parseFilter(r *http.Request) (state.Filter, error) {
	filter := state.Filter{
		PosName: strings.TrimSpace(r.URL.Query().Get("pos_name")),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %s", from)
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid to date: %s", to)
		}
		// Inclusive upper bound: cover the whole day
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	return filter, nil
}

func parseConfig(r *http.Request) service.ReportConfig {
	cfg := service.DefaultConfig()

	cfg.MinSupport = getFloatParam(r, "min_support", cfg.MinSupport)
	cfg.MinConfidence = getFloatParam(r, "min_confidence", cfg.MinConfidence)
	cfg.TopNRankings = getIntParam(r, "top_n", cfg.TopNRankings)
	cfg.TopNPairs = getIntParam(r, "top_pairs", cfg.TopNPairs)

	if bucket := r.URL.Query().Get("time_bucket"); bucket == service.BucketHalfHour {
		cfg.TimeBucket = service.BucketHalfHour
	}

	return cfg
}

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

func getFloatParam(r *http.Request, name string, defaultVal float64) float64 {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 || val > 1 {
		return defaultVal
	}
	return val
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
