package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		SpendingPath: writeFile(t, dir, "spend.csv",
			"Student_ID,Month,Food_(€),Rent_(€),Total_(€)",
			"S1,January,50,400,450",
			"S2,February,60,380,440",
			"S3,March,70,390,460",
		),
		PlatformPath: writeFile(t, dir, "shops.csv",
			"Website,Category,Avg_Spending_Per_User (€)",
			"Tesco,Groceries,40",
			"Zalando,Fashion,85",
		),
		Columns: source.DefaultColumns(),
	}
}

func TestLoad_TotalColumnNotCountedTwice(t *testing.T) {
	src := Sources{
		SpendingPath: writeFile(t, t.TempDir(), "spend.csv", "Month,Food,Total", "January,10,10"),
		Columns:      source.Columns{Period: "Month", Total: "Sum"},
	}
	res, err := Load(context.Background(), src, nil, nil)
	require.NoError(t, err)
	require.NoError(t, res.SpendingErr)

	series, err := Aggregate(res.Spending, model.TotalCategory)
	require.NoError(t, err)
	v, ok := series.At(model.January)
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestLoad_BothDatasets(t *testing.T) {
	src := testSources(t)
	var calls int
	res, err := Load(context.Background(), src, nil, func(current, total int) {
		calls++
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	require.NoError(t, res.SpendingErr)
	require.NoError(t, res.PlatformErr)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"Food", "Rent"}, res.Spending.Categories)
	assert.Len(t, res.Platforms, 2)
	assert.Equal(t, 2, res.Reparsed)

	ov, err := BuildOverview(res.Spending, "Food", 0, DefaultForecastPolicy())
	require.NoError(t, err)
	assert.InDelta(t, 80, ov.Forecast.NextValue, eps)
	assert.Equal(t, model.April, ov.Forecast.NextPeriod)
}

func TestLoad_MissingDatasetIsIsolated(t *testing.T) {
	src := testSources(t)
	src.PlatformPath = filepath.Join(t.TempDir(), "missing.csv")

	res, err := Load(context.Background(), src, nil, nil)
	require.NoError(t, err)
	require.NoError(t, res.SpendingErr)
	assert.ErrorIs(t, res.PlatformErr, ErrDatasetUnavailable)
	assert.Equal(t, "DatasetUnavailable", Condition(res.PlatformErr))
	assert.NotNil(t, res.Spending)
}

func TestLoad_SecondLoadServedFromCache(t *testing.T) {
	src := testSources(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	first, err := Load(context.Background(), src, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)

	second, err := Load(context.Background(), src, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 0, second.Reparsed)
	assert.Equal(t, first.Spending.Records, second.Spending.Records)
	assert.Equal(t, first.Platforms, second.Platforms)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, testSources(t), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
