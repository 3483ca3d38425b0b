package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/source"
	"github.com/letmecheque/letmecheque/internal/store"

	"golang.org/x/sync/errgroup"
)

// Sources locates the two datasets and the column mapping of the
// spending table.
type Sources struct {
	SpendingPath string
	PlatformPath string
	Columns      source.Columns
}

// LoadResult holds both datasets. Each dataset loads independently; a
// failure is recorded in its own error field and never blocks the other.
type LoadResult struct {
	Spending    *model.Dataset
	SpendingErr error
	Platforms   []model.Platform
	PlatformErr error

	CacheHits int
	Reparsed  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of datasets processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load reads both datasets concurrently. cache may be nil to always
// reparse. The returned error is non-nil only when ctx is cancelled.
func Load(ctx context.Context, src Sources, cache *store.Cache, progressFn ProgressFunc) (*LoadResult, error) {
	result := &LoadResult{}
	var processed, hits, reparsed atomic.Int64
	report := func() {
		n := processed.Add(1)
		if progressFn != nil {
			progressFn(int(n), 2)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds, hit, err := loadSpending(src, cache)
		result.Spending, result.SpendingErr = ds, err
		countHit(hit, err, &hits, &reparsed)
		report()
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		platforms, hit, err := loadPlatforms(src.PlatformPath, cache)
		result.Platforms, result.PlatformErr = platforms, err
		countHit(hit, err, &hits, &reparsed)
		report()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.CacheHits = int(hits.Load())
	result.Reparsed = int(reparsed.Load())
	return result, nil
}

func countHit(hit bool, err error, hits, reparsed *atomic.Int64) {
	switch {
	case err != nil:
	case hit:
		hits.Add(1)
	default:
		reparsed.Add(1)
	}
}

// schemaKey fingerprints the column mapping so a config change invalidates
// cached spending datasets.
func schemaKey(cols source.Columns) string {
	return strings.Join([]string{cols.Period, cols.Entity, cols.Total}, "|")
}

func fileInfo(path string) (store.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return store.FileInfo{}, false
	}
	return store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}, true
}

func loadSpending(src Sources, cache *store.Cache) (*model.Dataset, bool, error) {
	path := src.SpendingPath
	fi, statOK := fileInfo(path)
	fi.SchemaKey = schemaKey(src.Columns)

	if cache != nil && statOK {
		if ds, ok, err := cache.LookupSpending(path, fi); err == nil && ok {
			return ds, true, nil
		}
	}

	ds, err := source.ParseSpending(path, src.Columns)
	if err != nil {
		return nil, false, err
	}
	if cache != nil && statOK {
		_ = cache.SaveSpending(ds, fi)
	}
	return ds, false, nil
}

func loadPlatforms(path string, cache *store.Cache) ([]model.Platform, bool, error) {
	fi, statOK := fileInfo(path)

	if cache != nil && statOK {
		if platforms, ok, err := cache.LookupPlatforms(path, fi); err == nil && ok {
			return platforms, true, nil
		}
	}

	platforms, err := source.ParsePlatforms(path)
	if err != nil {
		return nil, false, err
	}
	if cache != nil && statOK {
		_ = cache.SavePlatforms(path, platforms, fi)
	}
	return platforms, false, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "letmecheque")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "letmecheque")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "datasets.db")
}
