package source

import (
	"fmt"
	"math"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/shopspring/decimal"
)

// totalTolerance is how far a precomputed total may drift from the sum of
// its category cells before the row is counted as a mismatch.
const totalTolerance = 0.01

// ParseSpending loads a spending table, discovering its categories from
// the header.
func ParseSpending(path string, cols Columns) (*model.Dataset, error) {
	head, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	ds, err := BuildDataset(head, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// BuildDataset validates raw rows into records. Blank cells are missing
// values and produce no record; unparseable or negative cells are counted
// in InvalidCells; rows whose period cannot be resolved are skipped.
func BuildDataset(rawHeader []string, rows [][]string, cols Columns) (*model.Dataset, error) {
	h := newHeader(rawHeader)
	periodIdx := h.find(cols.Period)
	if periodIdx < 0 {
		return nil, fmt.Errorf("period column %q: %w", cols.Period, ErrMissingColumn)
	}
	entityIdx := h.find(cols.Entity)
	totalIdx := h.find(cols.Total)

	categories := h.categories(cols)
	catIdx := make([]int, len(categories))
	for i, c := range categories {
		catIdx[i] = h.find(c)
	}

	ds := &model.Dataset{Categories: categories}
	for n, row := range rows {
		if isBlankRow(row) {
			continue
		}
		ds.Rows++

		period, ok := model.ParsePeriod(cell(row, periodIdx))
		if !ok {
			ds.SkippedRows++
			continue
		}

		entity := cell(row, entityIdx)
		if entity == "" {
			entity = fmt.Sprintf("row %d", n+2)
		}

		var sum float64
		for i, category := range categories {
			raw := cell(row, catIdx[i])
			if raw == "" {
				continue
			}
			amount, ok := parseAmount(raw)
			if !ok {
				ds.InvalidCells++
				continue
			}
			sum += amount
			ds.Records = append(ds.Records, model.SpendingRecord{
				Row:      n,
				Entity:   entity,
				Period:   period,
				Category: category,
				Amount:   amount,
			})
		}

		if raw := cell(row, totalIdx); raw != "" {
			if total, ok := parseAmount(raw); ok && math.Abs(total-sum) > totalTolerance {
				ds.TotalMismatches++
			}
		}
	}
	return ds, nil
}

// ParsePlatforms loads the platform price reference table.
func ParsePlatforms(path string) ([]model.Platform, error) {
	head, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	platforms, err := BuildPlatforms(head, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return platforms, nil
}

// BuildPlatforms maps raw rows to platforms. Rows without a name or with an
// unusable amount are dropped.
func BuildPlatforms(rawHeader []string, rows [][]string) ([]model.Platform, error) {
	h := newHeader(rawHeader)
	var idx [3]int
	for i, name := range []string{PlatformNameColumn, PlatformCategoryColumn, PlatformSpendColumn} {
		idx[i] = h.find(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q: %w", name, ErrMissingColumn)
		}
	}

	var out []model.Platform
	for _, row := range rows {
		name := cell(row, idx[0])
		if name == "" {
			continue
		}
		spend, ok := parseAmount(cell(row, idx[2]))
		if !ok {
			continue
		}
		out = append(out, model.Platform{
			Name:            name,
			Category:        cell(row, idx[1]),
			AvgSpendPerUser: spend,
		})
	}
	return out, nil
}

// parseAmount accepts plain decimals with an optional leading currency sign
// and thousands separators. Negative amounts are rejected.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "\x80")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
