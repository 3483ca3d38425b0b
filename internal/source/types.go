// Package source reads spending and platform datasets from CSV and XLSX files.
package source

import "errors"

var (
	// ErrDatasetUnavailable means a dataset file could not be found.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrMissingColumn means a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
)

// Columns names the non-category columns of a spending table, after
// normalization. Matching is case-insensitive.
type Columns struct {
	Period string
	Entity string
	Total  string
}

// DefaultColumns matches the student spending export.
func DefaultColumns() Columns {
	return Columns{
		Period: "Month",
		Entity: "Student ID",
		Total:  "Total",
	}
}

// Format is the on-disk format of a dataset.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DiscoveredFile is a candidate dataset found in the data directory.
type DiscoveredFile struct {
	Path   string
	Name   string
	Format Format
	Size   int64
}

// Platform table column names after normalization.
const (
	PlatformNameColumn     = "Website"
	PlatformCategoryColumn = "Category"
	PlatformSpendColumn    = "Avg Spending Per User"
)
