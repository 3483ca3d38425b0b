package model

// TotalCategory is the pseudo-category that sums every category per record.
const TotalCategory = "Total"

// SpendingRecord is one observed amount for one entity, period and category.
// Row identifies the source table row so per-record totals can be rebuilt.
type SpendingRecord struct {
	Row      int
	Entity   string
	Period   Period
	Category string
	Amount   float64
}

// Dataset is a validated spending table with its discovered category schema.
type Dataset struct {
	Source     string
	Categories []string
	Records    []SpendingRecord

	// Loader diagnostics
	Rows            int
	SkippedRows     int
	InvalidCells    int
	TotalMismatches int
}

// HasCategory reports whether category is part of the dataset schema.
func (d *Dataset) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Selectable returns the categories offered to a user, Total first.
func (d *Dataset) Selectable() []string {
	out := make([]string, 0, len(d.Categories)+1)
	out = append(out, TotalCategory)
	return append(out, d.Categories...)
}

// Platform is one row of the platform price reference table.
type Platform struct {
	Name            string  `json:"platform"`
	Category        string  `json:"category"`
	AvgSpendPerUser float64 `json:"avg_spend_per_user"`
}

// LocationAlert classifies a location as a high- or low-spending zone.
type LocationAlert struct {
	Location  string `json:"location"`
	HighSpend bool   `json:"high_spend"`
}
