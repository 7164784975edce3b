package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"pos-analytics/internal/models"
	"pos-analytics/internal/state"
)

// SchemaError means a required column is missing from the ingested data.
// It is fatal: the caller must surface it before any analytics run.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column: %s", e.Column)
}

type IngestService struct{}

func NewIngestService() *IngestService {
	return &IngestService{}
}

// LoadFile reads a POS transaction detail CSV and returns a validated
// dataset
func (s *IngestService) LoadFile(filePath string) (*state.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return s.LoadCSV(file)
}

// LoadCSV parses CSV content from r. The first record is the header row.
func (s *IngestService) LoadCSV(r io.Reader) (*state.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %v", err)
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows rather than failing the whole load
			continue
		}
		rows = append(rows, record)
	}

	return s.LoadRows(headers, rows)
}

// LoadRows builds a dataset from raw tabular data (CSV or a database
// fetch). Headers are normalized before the required-column check, so
// "Item Name" and " item_name " both satisfy item_name.
func (s *IngestService) LoadRows(headers []string, rows [][]string) (*state.Dataset, error) {
	colIdx := make(map[string]int)
	for i, h := range headers {
		colIdx[NormalizeColumn(h)] = i
	}

	for _, col := range models.RequiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, &SchemaError{Column: col}
		}
	}

	items := make([]models.LineItem, 0, len(rows))
	for _, row := range rows {
		get := func(col string) string {
			idx := colIdx[col]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		items = append(items, models.LineItem{
			Barcode:   get("barcode"),
			ItemName:  get("item_name"),
			Qty:       parseFloat(get("qty")),
			PosName:   get("pos_name"),
			TranNo:    get("tran_no"),
			TranDate:  parseDate(get("tran_date")),
			Rate:      parseFloat(get("rate")),
			ItemTotal: parseFloat(get("item_total")),
		})
	}

	return &state.Dataset{
		Items:        items,
		BarcodeIndex: buildBarcodeIndex(items),
	}, nil
}

// NormalizeColumn applies the header normalization rule: trim, lowercase,
// spaces to underscores
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// parseDate tries the known POS export layouts. An unparseable value
// yields the zero time; the row is kept but drops out of time-bucketed
// trends.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func buildBarcodeIndex(items []models.LineItem) map[string][]string {
	index := make(map[string]map[string]bool)
	for _, li := range items {
		if li.Barcode == "" {
			continue
		}
		if index[li.Barcode] == nil {
			index[li.Barcode] = make(map[string]bool)
		}
		index[li.Barcode][li.ItemName] = true
	}

	out := make(map[string][]string, len(index))
	for barcode, names := range index {
		list := make([]string, 0, len(names))
		for name := range names {
			list = append(list, name)
		}
		sort.Strings(list)
		out[barcode] = list
	}
	return out
}
