package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/store"
)

var benchCategories = []string{"Food", "Rent", "Transport", "Entertainment", "Clothing", "Utilities"}

func benchDataset(rows int) *model.Dataset {
	ds := &model.Dataset{Source: "bench", Categories: benchCategories, Rows: rows}
	for r := 0; r < rows; r++ {
		p := model.Periods[r%model.PeriodCount]
		for i, c := range benchCategories {
			ds.Records = append(ds.Records, model.SpendingRecord{
				Row:      r + 1,
				Entity:   fmt.Sprintf("S%d", r),
				Period:   p,
				Category: c,
				Amount:   float64(10*(i+1) + r%37),
			})
		}
	}
	return ds
}

func benchCSV(b *testing.B, rows int) string {
	b.Helper()
	var sb strings.Builder
	sb.WriteString("Student_ID,Month")
	for _, c := range benchCategories {
		sb.WriteString("," + c + "_(€)")
	}
	sb.WriteString("\n")
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&sb, "S%d,%s", r, model.Periods[r%model.PeriodCount])
		for i := range benchCategories {
			fmt.Fprintf(&sb, ",%d", 10*(i+1)+r%37)
		}
		sb.WriteString("\n")
	}
	path := filepath.Join(b.TempDir(), "spend.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		b.Fatal(err)
	}
	return path
}

func BenchmarkAggregateAll(b *testing.B) {
	ds := benchDataset(5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateAll(ds)
	}
}

func BenchmarkBuildOverview(b *testing.B) {
	ds := benchDataset(5000)
	policy := DefaultForecastPolicy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildOverview(ds, "Food", 25, policy); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad(b *testing.B) {
	src := Sources{SpendingPath: benchCSV(b, 5000), Columns: source.DefaultColumns()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := Load(context.Background(), src, nil, nil)
		if err != nil {
			b.Fatal(err)
		}
		if res.SpendingErr != nil {
			b.Fatal(res.SpendingErr)
		}
	}
}

func BenchmarkLoadCached(b *testing.B) {
	src := Sources{SpendingPath: benchCSV(b, 5000), Columns: source.DefaultColumns()}

	cache, err := store.Open(filepath.Join(b.TempDir(), "cache.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	// Prime the cache
	if _, err := Load(context.Background(), src, cache, nil); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(context.Background(), src, cache, nil); err != nil {
			b.Fatal(err)
		}
	}
}
