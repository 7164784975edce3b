package models

import "time"

// RequiredColumns are the columns every ingested transaction file must
// provide (after header normalization).
var RequiredColumns = []string{
	"barcode", "item_name", "qty", "pos_name",
	"tran_no", "tran_date", "rate", "item_total",
}

// LineItem is one sold-item row from the POS transaction detail export.
// A transaction is identified by (PosName, TranNo); TranNo alone is only
// unique per register.
type LineItem struct {
	Barcode   string    `json:"barcode"`
	ItemName  string    `json:"item_name"`
	Qty       float64   `json:"qty"`
	PosName   string    `json:"pos_name"`
	TranNo    string    `json:"tran_no"`
	TranDate  time.Time `json:"tran_date"`
	Rate      float64   `json:"rate"`
	ItemTotal float64   `json:"item_total"`
}

// HasDate reports whether the row's transaction date parsed at ingestion.
// Rows without a date are kept for sales KPIs and basket analysis but
// excluded from time-bucketed trends.
func (li LineItem) HasDate() bool {
	return !li.TranDate.IsZero()
}

// TransactionKey is the composite bill identifier.
type TransactionKey struct {
	PosName string `json:"pos_name"`
	TranNo  string `json:"tran_no"`
}
