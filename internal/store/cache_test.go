package store

import (
	"path/filepath"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "data.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSpendingRoundTripAndInvalidation(t *testing.T) {
	c := openTestCache(t)
	ds := &model.Dataset{
		Source:       "/data/spend.csv",
		Categories:   []string{"Food", "Rent"},
		Rows:         2,
		SkippedRows:  1,
		InvalidCells: 3,
		Records: []model.SpendingRecord{
			{Row: 0, Entity: "S1", Period: model.January, Category: "Food", Amount: 12.5},
			{Row: 1, Entity: "S2", Period: model.March, Category: "Rent", Amount: 400},
		},
	}
	fi := FileInfo{SchemaKey: "Month|Student ID|Total", MtimeNs: 100, SizeBytes: 42}
	require.NoError(t, c.SaveSpending(ds, fi))

	got, ok, err := c.LookupSpending(ds.Source, fi)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ds, got)

	stale := fi
	stale.MtimeNs = 101
	_, ok, err = c.LookupSpending(ds.Source, stale)
	require.NoError(t, err)
	assert.False(t, ok, "changed mtime must miss")

	otherSchema := fi
	otherSchema.SchemaKey = "Period||"
	_, ok, err = c.LookupSpending(ds.Source, otherSchema)
	require.NoError(t, err)
	assert.False(t, ok, "changed column mapping must miss")
}

func TestSaveSpendingReplacesRows(t *testing.T) {
	c := openTestCache(t)
	fi := FileInfo{MtimeNs: 1, SizeBytes: 1}
	first := &model.Dataset{Source: "a.csv", Categories: []string{"Food"}, Records: []model.SpendingRecord{
		{Entity: "S1", Period: model.May, Category: "Food", Amount: 1},
		{Entity: "S2", Period: model.May, Category: "Food", Amount: 2},
	}}
	require.NoError(t, c.SaveSpending(first, fi))

	fi.MtimeNs = 2
	second := &model.Dataset{Source: "a.csv", Categories: []string{"Fun"}, Records: []model.SpendingRecord{
		{Entity: "S1", Period: model.June, Category: "Fun", Amount: 9},
	}}
	require.NoError(t, c.SaveSpending(second, fi))

	got, ok, err := c.LookupSpending("a.csv", fi)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Fun"}, got.Categories)
	assert.Len(t, got.Records, 1)

	n, err := c.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPlatformsRoundTrip(t *testing.T) {
	c := openTestCache(t)
	fi := FileInfo{MtimeNs: 5, SizeBytes: 10}
	in := []model.Platform{
		{Name: "Zalando", Category: "Fashion", AvgSpendPerUser: 85.5},
		{Name: "Tesco", Category: "", AvgSpendPerUser: 42},
	}
	require.NoError(t, c.SavePlatforms("shops.csv", in, fi))

	got, ok, err := c.LookupPlatforms("shops.csv", fi)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)

	// A spending lookup on a platform file never hits.
	_, ok, err = c.LookupSpending("shops.csv", fi)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.DeleteFileTracker("shops.csv"))
	_, ok, err = c.LookupPlatforms("shops.csv", fi)
	require.NoError(t, err)
	assert.False(t, ok)
}
