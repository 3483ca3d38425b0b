package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    schema_key           TEXT NOT NULL DEFAULT '',
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    row_count            INTEGER NOT NULL DEFAULT 0,
    skipped_rows         INTEGER NOT NULL DEFAULT 0,
    invalid_cells        INTEGER NOT NULL DEFAULT 0,
    total_mismatches     INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_categories (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    PRIMARY KEY (file_path, position)
);

CREATE TABLE IF NOT EXISTS spending_records (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    row_num              INTEGER NOT NULL,
    entity               TEXT NOT NULL,
    period               INTEGER NOT NULL,
    category             TEXT NOT NULL,
    amount               REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS platforms (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    category             TEXT,
    avg_spend            REAL NOT NULL,
    PRIMARY KEY (file_path, position)
);

CREATE INDEX IF NOT EXISTS idx_records_file ON spending_records(file_path);
`
