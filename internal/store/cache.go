// Package store provides a SQLite-backed cache for parsed datasets.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/letmecheque/letmecheque/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Dataset kinds recorded in file_tracker.
const (
	KindSpending  = "spending"
	KindPlatforms = "platforms"
)

// Cache provides SQLite-backed dataset caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo identifies one parsed version of a file.
type FileInfo struct {
	Kind      string
	SchemaKey string
	MtimeNs   int64
	SizeBytes int64
}

// tracked returns whether path was cached with exactly this fingerprint.
func (c *Cache) tracked(path string, want FileInfo) (bool, error) {
	var got FileInfo
	err := c.db.QueryRow(`SELECT kind, schema_key, mtime_ns, size_bytes
		FROM file_tracker WHERE file_path = ?`, path).
		Scan(&got.Kind, &got.SchemaKey, &got.MtimeNs, &got.SizeBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// LookupSpending returns the cached dataset for path when its fingerprint
// still matches. ok is false on a miss.
func (c *Cache) LookupSpending(path string, fi FileInfo) (ds *model.Dataset, ok bool, err error) {
	fi.Kind = KindSpending
	hit, err := c.tracked(path, fi)
	if err != nil || !hit {
		return nil, false, err
	}

	ds = &model.Dataset{Source: path}
	err = c.db.QueryRow(`SELECT row_count, skipped_rows, invalid_cells, total_mismatches
		FROM file_tracker WHERE file_path = ?`, path).
		Scan(&ds.Rows, &ds.SkippedRows, &ds.InvalidCells, &ds.TotalMismatches)
	if err != nil {
		return nil, false, err
	}

	cats, err := c.db.Query(`SELECT name FROM dataset_categories
		WHERE file_path = ? ORDER BY position`, path)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = cats.Close() }()
	for cats.Next() {
		var name string
		if err := cats.Scan(&name); err != nil {
			return nil, false, err
		}
		ds.Categories = append(ds.Categories, name)
	}
	if err := cats.Err(); err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`SELECT row_num, entity, period, category, amount
		FROM spending_records WHERE file_path = ? ORDER BY rowid`, path)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r model.SpendingRecord
		var period int
		if err := rows.Scan(&r.Row, &r.Entity, &period, &r.Category, &r.Amount); err != nil {
			return nil, false, err
		}
		r.Period = model.Period(period)
		ds.Records = append(ds.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return ds, true, nil
}

// SaveSpending replaces the cached copy of a parsed spending dataset.
func (c *Cache) SaveSpending(ds *model.Dataset, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceTracker(tx, ds.Source, KindSpending, fi, ds); err != nil {
		return err
	}

	for i, name := range ds.Categories {
		if _, err := tx.Exec(`INSERT INTO dataset_categories (file_path, position, name)
			VALUES (?, ?, ?)`, ds.Source, i, name); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO spending_records
		(file_path, row_num, entity, period, category, amount)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range ds.Records {
		if _, err := stmt.Exec(ds.Source, r.Row, r.Entity, int(r.Period), r.Category, r.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LookupPlatforms returns the cached platform table for path when its
// fingerprint still matches.
func (c *Cache) LookupPlatforms(path string, fi FileInfo) ([]model.Platform, bool, error) {
	fi.Kind = KindPlatforms
	hit, err := c.tracked(path, fi)
	if err != nil || !hit {
		return nil, false, err
	}

	rows, err := c.db.Query(`SELECT name, category, avg_spend
		FROM platforms WHERE file_path = ? ORDER BY position`, path)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Platform
	for rows.Next() {
		var p model.Platform
		var category sql.NullString
		if err := rows.Scan(&p.Name, &category, &p.AvgSpendPerUser); err != nil {
			return nil, false, err
		}
		p.Category = category.String
		out = append(out, p)
	}
	return out, true, rows.Err()
}

// SavePlatforms replaces the cached copy of a platform table.
func (c *Cache) SavePlatforms(path string, platforms []model.Platform, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceTracker(tx, path, KindPlatforms, fi, nil); err != nil {
		return err
	}
	for i, p := range platforms {
		if _, err := tx.Exec(`INSERT INTO platforms (file_path, position, name, category, avg_spend)
			VALUES (?, ?, ?, ?, ?)`, path, i, p.Name, p.Category, p.AvgSpendPerUser); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// replaceTracker drops any previous version of path (cascading to its
// rows) and records the new fingerprint.
func replaceTracker(tx *sql.Tx, path, kind string, fi FileInfo, ds *model.Dataset) error {
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	var rowCount, skipped, invalid, mismatches int
	if ds != nil {
		rowCount, skipped, invalid, mismatches = ds.Rows, ds.SkippedRows, ds.InvalidCells, ds.TotalMismatches
	}
	_, err := tx.Exec(`INSERT INTO file_tracker
		(file_path, kind, schema_key, mtime_ns, size_bytes,
		 row_count, skipped_rows, invalid_cells, total_mismatches, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, kind, fi.SchemaKey, fi.MtimeNs, fi.SizeBytes,
		rowCount, skipped, invalid, mismatches, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteFileTracker removes a cached file and everything parsed from it.
func (c *Cache) DeleteFileTracker(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// FileCount returns the number of cached dataset files.
func (c *Cache) FileCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM file_tracker").Scan(&count)
	return count, err
}
