// Package export writes spending reports as XLSX workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the generated workbook.
const (
	SheetSummary    = "Summary"
	SheetMonthly    = "Monthly"
	SheetSimulation = "Simulation"
	SheetPlatforms  = "Platforms"
)

// Report is everything a workbook is built from. Platforms may be nil when
// the reference dataset is unavailable; the sheet is then omitted.
type Report struct {
	Dataset     *model.Dataset
	Platforms   []model.Platform
	Policy      pipeline.ForecastPolicy
	Delta       float64
	GeneratedAt time.Time
}

const euroFmt = `"€"#,##0.00`

type styles struct {
	title  int
	header int
	money  int
	ratio  int
	muted  int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	fmtEuro := euroFmt
	fmtRatio := "0.000"

	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#24837B"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return st, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#3AA99F"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#1C1B1A", Style: 1},
		},
	}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtEuro}); err != nil {
		return st, err
	}
	if st.ratio, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtRatio}); err != nil {
		return st, err
	}
	st.muted, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "#6F6E69"}})
	return st, err
}

// Build renders the report into a new workbook. The caller owns the file
// and must close it.
func Build(r Report) (*excelize.File, error) {
	if r.Dataset == nil {
		return nil, fmt.Errorf("building workbook: %w", pipeline.ErrDatasetUnavailable)
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating styles: %w", err)
	}

	all := pipeline.AggregateAll(r.Dataset)

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	steps := []func() error{
		func() error { return writeSummary(f, st, r, all) },
		func() error { return writeMonthly(f, st, all) },
		func() error { return writeSimulation(f, st, r.Delta, all) },
	}
	if r.Platforms != nil {
		steps = append(steps, func() error { return writePlatforms(f, st, r.Platforms) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the report and saves it to path.
func Write(path string, r Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, sheet string, row int, st styles, headers ...string) error {
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cellName(i+1, row), h); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cellName(1, row), cellName(len(headers), row), st.header)
}

func writeSummary(f *excelize.File, st styles, r Report, all []model.AggregatedSeries) error {
	const sheet = SheetSummary
	headers := []string{"Category", "Months", "Mean", "Peak Month", "Peak", "Forecast Month", "Forecast", "Trend/Month", "R²"}
	last := cellName(len(headers), 1)

	if err := f.MergeCell(sheet, "A1", last); err != nil {
		return err
	}
	_ = f.SetCellValue(sheet, "A1", "LetMeCheque spending report")
	_ = f.SetCellStyle(sheet, "A1", last, st.title)
	_ = f.SetRowHeight(sheet, 1, 28)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("%s, generated %s", r.Dataset.Source, r.GeneratedAt.Format("2006-01-02 15:04")))
	_ = f.SetCellStyle(sheet, "A2", "A2", st.muted)

	if err := writeHeader(f, sheet, 3, st, headers...); err != nil {
		return err
	}

	row := 4
	for _, s := range all {
		_ = f.SetCellValue(sheet, cellName(1, row), s.Category)
		_ = f.SetCellValue(sheet, cellName(2, row), s.Defined())
		if s.Defined() > 0 {
			_ = f.SetCellValue(sheet, cellName(3, row), s.Mean())
		}
		if p, v, ok := s.Peak(); ok {
			_ = f.SetCellValue(sheet, cellName(4, row), p.String())
			_ = f.SetCellValue(sheet, cellName(5, row), v)
		}
		if fc, err := r.Policy.Forecast(s); err == nil {
			_ = f.SetCellValue(sheet, cellName(6, row), fc.NextPeriod.String())
			_ = f.SetCellValue(sheet, cellName(7, row), fc.NextValue)
			_ = f.SetCellValue(sheet, cellName(8, row), fc.Slope)
			_ = f.SetCellValue(sheet, cellName(9, row), fc.RSquared)
		} else {
			_ = f.SetCellValue(sheet, cellName(6, row), pipeline.Prompt(err))
			_ = f.SetCellStyle(sheet, cellName(6, row), cellName(6, row), st.muted)
		}
		row++
	}
	if row > 4 {
		_ = f.SetCellStyle(sheet, cellName(3, 4), cellName(3, row-1), st.money)
		_ = f.SetCellStyle(sheet, cellName(5, 4), cellName(5, row-1), st.money)
		_ = f.SetCellStyle(sheet, cellName(7, 4), cellName(8, row-1), st.money)
		_ = f.SetCellStyle(sheet, cellName(9, 4), cellName(9, row-1), st.ratio)
	}

	row++
	_ = f.SetCellValue(sheet, cellName(1, row), "Rows")
	_ = f.SetCellValue(sheet, cellName(2, row), r.Dataset.Rows)
	_ = f.SetCellValue(sheet, cellName(1, row+1), "Skipped rows")
	_ = f.SetCellValue(sheet, cellName(2, row+1), r.Dataset.SkippedRows)
	_ = f.SetCellValue(sheet, cellName(1, row+2), "Invalid cells")
	_ = f.SetCellValue(sheet, cellName(2, row+2), r.Dataset.InvalidCells)

	return f.SetColWidth(sheet, "A", "A", 24)
}

func writeMonthly(f *excelize.File, st styles, all []model.AggregatedSeries) error {
	const sheet = SheetMonthly
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Month"}
	for _, s := range all {
		headers = append(headers, s.Category)
	}
	if err := writeHeader(f, sheet, 1, st, headers...); err != nil {
		return err
	}

	for i, p := range model.Periods {
		row := i + 2
		_ = f.SetCellValue(sheet, cellName(1, row), p.String())
		for j, s := range all {
			if v, ok := s.At(p); ok {
				_ = f.SetCellValue(sheet, cellName(j+2, row), v)
			}
		}
	}
	if len(all) > 0 {
		_ = f.SetCellStyle(sheet, "B2", cellName(len(all)+1, model.PeriodCount+1), st.money)
	}
	return f.SetColWidth(sheet, "A", "A", 14)
}

func writeSimulation(f *excelize.File, st styles, delta float64, all []model.AggregatedSeries) error {
	const sheet = SheetSimulation
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetCellValue(sheet, "A1", "Extra per month")
	_ = f.SetCellValue(sheet, "B1", delta)
	_ = f.SetCellStyle(sheet, "B1", "B1", st.money)

	if err := writeHeader(f, sheet, 3, st, "Category", "Peak Month", "Peak", "Simulated Peak"); err != nil {
		return err
	}
	row := 4
	for _, s := range all {
		sim, err := pipeline.Simulate(s, delta)
		if err != nil {
			continue
		}
		_, base, _ := s.Peak()
		_ = f.SetCellValue(sheet, cellName(1, row), s.Category)
		_ = f.SetCellValue(sheet, cellName(2, row), sim.PeakPeriod.String())
		_ = f.SetCellValue(sheet, cellName(3, row), base)
		_ = f.SetCellValue(sheet, cellName(4, row), sim.PeakValue)
		row++
	}
	if row > 4 {
		_ = f.SetCellStyle(sheet, "C4", cellName(4, row-1), st.money)
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func writePlatforms(f *excelize.File, st styles, platforms []model.Platform) error {
	const sheet = SheetPlatforms
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, 1, st, "Rank", "Platform", "Category", "Avg Spend/User"); err != nil {
		return err
	}
	ranked := pipeline.RankPlatforms(platforms)
	for i, p := range ranked {
		row := i + 2
		_ = f.SetCellValue(sheet, cellName(1, row), i+1)
		_ = f.SetCellValue(sheet, cellName(2, row), p.Name)
		_ = f.SetCellValue(sheet, cellName(3, row), p.Category)
		_ = f.SetCellValue(sheet, cellName(4, row), p.AvgSpendPerUser)
	}
	if len(ranked) > 0 {
		_ = f.SetCellStyle(sheet, "D2", cellName(4, len(ranked)+1), st.money)
	}
	return f.SetColWidth(sheet, "B", "C", 22)
}
