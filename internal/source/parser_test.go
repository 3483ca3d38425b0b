package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeCSV creates a temp CSV file from lines and returns its path.
func writeCSV(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Food_(€)", "Food"},
		{"Food_()", "Food"},
		{" Entertainment (EUR) ", "Entertainment"},
		{"Avg_Spending_Per_User (\x80)", "Avg Spending Per User"},
		{"Student_ID", "Student ID"},
		{"\ufeffMonth", "Month"},
		{"Travel (Long Haul)", "Travel (Long Haul)"},
	}
	for _, tt := range tests {
		if got := NormalizeColumn(tt.raw); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDiscoverCategories_ExcludesReservedColumns(t *testing.T) {
	head := []string{"Student_ID", "Month", "Food_(€)", "Rent_(€)", "Total_(€)"}
	got := DiscoverCategories(head, DefaultColumns())
	assert.Equal(t, []string{"Food", "Rent"}, got)
}

func TestParseSpending_CSV(t *testing.T) {
	path := writeCSV(t, "spend.csv",
		"Student_ID,Month,Food_(€),Rent_(€),Total_(€)",
		"S1,January,100,400,500",
		"S2,jan,200,,200",
		"S1,Feb,50,450,500",
		"S3,Smarch,10,10,20",
		"S4,March,abc,-5,0",
	)

	ds, err := ParseSpending(path, DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, path, ds.Source)
	assert.Equal(t, []string{"Food", "Rent"}, ds.Categories)
	assert.Equal(t, 5, ds.Rows)
	assert.Equal(t, 1, ds.SkippedRows, "unknown month row")
	assert.Equal(t, 2, ds.InvalidCells, "non-numeric and negative cells")
	assert.Len(t, ds.Records, 5, "blank cell yields no record")

	var janFood []float64
	for _, r := range ds.Records {
		if r.Period == model.January && r.Category == "Food" {
			janFood = append(janFood, r.Amount)
		}
	}
	assert.ElementsMatch(t, []float64{100, 200}, janFood)
}

func TestParseSpending_TotalNamedColumnIsNotACategory(t *testing.T) {
	path := writeCSV(t, "spend.csv",
		"Month,Food,Total",
		"January,10,10",
	)
	ds, err := ParseSpending(path, Columns{Period: "Month", Total: "Sum"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Food"}, ds.Categories)
	assert.Equal(t, []string{model.TotalCategory, "Food"}, ds.Selectable())
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Food", ds.Records[0].Category)
}

func TestParseSpending_TotalMismatch(t *testing.T) {
	path := writeCSV(t, "spend.csv",
		"Month,Food,Rent,Total",
		"January,100,400,500",
		"January,100,400,900",
	)
	ds, err := ParseSpending(path, DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.TotalMismatches)
	for _, r := range ds.Records {
		assert.True(t, strings.HasPrefix(r.Entity, "row "), "entity %q should fall back to row label", r.Entity)
	}
}

func TestParseSpending_MissingPeriodColumn(t *testing.T) {
	path := writeCSV(t, "spend.csv", "Student_ID,Food", "S1,10")
	_, err := ParseSpending(path, DefaultColumns())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestParseSpending_MissingFile(t *testing.T) {
	_, err := ParseSpending(filepath.Join(t.TempDir(), "nope.csv"), DefaultColumns())
	if !errors.Is(err, ErrDatasetUnavailable) {
		t.Fatalf("err = %v, want ErrDatasetUnavailable", err)
	}
}

func TestParseSpending_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spend.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"Month", "Food_(€)", "Fun_(€)"},
		{"January", 10, 20},
		{"February", 30, ""},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := ParseSpending(path, DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Fun"}, ds.Categories)
	assert.Len(t, ds.Records, 3)
}

func TestParsePlatforms(t *testing.T) {
	path := writeCSV(t, "shops.csv",
		"Website,Category,Avg_Spending_Per_User (€)",
		"Zalando,Fashion,85.50",
		",Blank,10",
		"Asos,Fashion,n/a",
		"Tesco,Groceries,€42",
	)
	got, err := ParsePlatforms(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Platform{
		{Name: "Zalando", Category: "Fashion", AvgSpendPerUser: 85.5},
		{Name: "Tesco", Category: "Groceries", AvgSpendPerUser: 42},
	}, got)
}

func TestParsePlatforms_MissingColumn(t *testing.T) {
	path := writeCSV(t, "shops.csv", "Website,Category", "Zalando,Fashion")
	_, err := ParsePlatforms(path)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), PlatformSpendColumn)
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", "notes.txt", ".hidden.csv", "~$lock.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	files, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.xlsx", files[0].Name)
	assert.Equal(t, FormatXLSX, files[0].Format)
	assert.Equal(t, "b.csv", files[1].Name)

	missing, err := ScanDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "x.csv"), Resolve("data", "x.csv"))
	assert.Equal(t, "/abs/x.csv", Resolve("data", "/abs/x.csv"))
	assert.Equal(t, "x.csv", Resolve("", "x.csv"))
}
