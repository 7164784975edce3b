package models

// UploadResponse is returned after a successful transaction file upload
type UploadResponse struct {
	Message     string   `json:"message"`
	Rows        int      `json:"rows"`
	ColumnNames []string `json:"column_names"`
}

// StatusResponse is returned by /status
type StatusResponse struct {
	Loaded   bool   `json:"loaded"`
	Rows     int    `json:"rows"`
	Filename string `json:"filename,omitempty"`
}

// KPIs are the headline sales metrics over the filtered line-items.
// Sums run over the raw multiset of rows; duplicate item names within a
// bill still contribute their qty and revenue here even though basket
// analysis collapses them.
type KPIs struct {
	TotalSales  float64 `json:"total_sales"`
	TotalBills  int     `json:"total_bills"`
	TotalQty    float64 `json:"total_qty"`
	UniqueItems int     `json:"unique_items"`
}

// BasketMetrics are bill-level averages
type BasketMetrics struct {
	AvgBasketValue float64 `json:"avg_basket_value"`
	AvgBasketSize  float64 `json:"avg_basket_size"`
}

// PosSales is revenue attributed to one register
type PosSales struct {
	PosName    string  `json:"pos_name"`
	TotalSales float64 `json:"total_sales"`
}

// ItemSales is the per-item sales summary row
type ItemSales struct {
	ItemName   string  `json:"item_name"`
	TotalQty   float64 `json:"total_qty"`
	TotalSales float64 `json:"total_sales"`
}

// TrendPoint is one point of the daily sales series (Date = YYYY-MM-DD)
type TrendPoint struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"total_sales"`
	BillCount  int     `json:"bill_count"`
}

// BucketPoint is one point of the intra-day series. Label is "HH:00" for
// hourly buckets and "HH:00" / "HH:30" for half-hour buckets.
type BucketPoint struct {
	Label      string  `json:"label"`
	TotalSales float64 `json:"total_sales"`
	BillCount  int     `json:"bill_count"`
}

// SalesTrendline is a linear fit over the daily series
type SalesTrendline struct {
	Slope    float64 `json:"slope"`
	RSquared float64 `json:"r_squared"`
}

// Trends bundles the time-series outputs. Rows whose transaction date
// failed to parse are absent from every series.
type Trends struct {
	Daily     []TrendPoint   `json:"daily"`
	Buckets   []BucketPoint  `json:"buckets"`
	Trendline SalesTrendline `json:"trendline"`
}

// Rankings are the item movement tables
type Rankings struct {
	ItemSales  []ItemSales `json:"item_sales"`
	FastMovers []ItemSales `json:"fast_movers"`
	SlowMovers []ItemSales `json:"slow_movers"`
	PosSales   []PosSales  `json:"pos_sales"`
}

// FrequentItemset is an itemset meeting the minimum support threshold
type FrequentItemset struct {
	Items   []string `json:"items"`
	Support float64  `json:"support"`
}

// AssociationRule is antecedent → consequent with its strength metrics
type AssociationRule struct {
	Antecedent []string `json:"antecedent"`
	Consequent []string `json:"consequent"`
	Support    float64  `json:"support"`
	Confidence float64  `json:"confidence"`
	Lift       float64  `json:"lift"`
}

// BasketAnalysis carries the mining output. InsufficientData means the
// miner never ran (no baskets); an empty Rules slice with
// InsufficientData false means it ran and nothing met the thresholds.
type BasketAnalysis struct {
	Itemsets         []FrequentItemset `json:"itemsets"`
	Rules            []AssociationRule `json:"rules"`
	TotalBaskets     int               `json:"total_baskets"`
	InsufficientData bool              `json:"insufficient_data"`
}

// PairInsight is one row of the pairwise co-occurrence report. The two
// conditional probabilities are directional and generally differ.
type PairInsight struct {
	ItemA      string  `json:"item_a"`
	ItemB      string  `json:"item_b"`
	Count      int     `json:"count"`
	PctAGivenB float64 `json:"pct_a_given_b"`
	PctBGivenA float64 `json:"pct_b_given_a"`
}

// PairReport is the co-occurrence table plus its data marker
type PairReport struct {
	Pairs            []PairInsight `json:"pairs"`
	TotalBaskets     int           `json:"total_baskets"`
	InsufficientData bool          `json:"insufficient_data"`
}

// ItemProbability is "chance OtherItem is in the bill given Item is"
type ItemProbability struct {
	OtherItem string  `json:"other_item"`
	Together  int     `json:"together"`
	Pct       float64 `json:"pct"`
}

// ItemReport answers "what sells alongside this item"
type ItemReport struct {
	Item             string            `json:"item"`
	Presence         int               `json:"presence"`
	Probabilities    []ItemProbability `json:"probabilities"`
	InsufficientData bool              `json:"insufficient_data"`
}

// Report is the full dashboard payload
type Report struct {
	KPIs          KPIs           `json:"kpis"`
	BasketMetrics BasketMetrics  `json:"basket_metrics"`
	Trends        Trends         `json:"trends"`
	Rankings      Rankings       `json:"rankings"`
	Baskets       BasketAnalysis `json:"baskets"`
	Pairs         PairReport     `json:"pairs"`
}

// BarcodeMatch is one hit from the barcode search
type BarcodeMatch struct {
	Barcode   string   `json:"barcode"`
	ItemNames []string `json:"item_names"`
}
