// Package export writes the package tree and its class records to formats
// other tools can query offline.
//
// This file implements SQLite schema creation for the static export.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createCoverageTables(db); err != nil {
		return fmt.Errorf("create coverage tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the nodes table holding the flattened hierarchy.
func createCoreTables(db *sql.DB) error {
	// ord keeps pre-order so clients can rebuild the tree without sorting ids
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			depth INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			text TEXT NOT NULL,
			label TEXT NOT NULL,
			href TEXT,
			coverage TEXT,
			coverage_pct REAL,
			dom_key TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES nodes(id)
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	return nil
}

// createCoverageTables creates the per-class detail tables.
func createCoverageTables(db *sql.DB) error {
	classesSQL := `
		CREATE TABLE IF NOT EXISTS classes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_line INTEGER,
			end_line INTEGER,
			method_count INTEGER DEFAULT 0,
			pass_count INTEGER DEFAULT 0,
			fail_count INTEGER DEFAULT 0,
			covered_lines INTEGER DEFAULT 0
		)
	`
	if _, err := db.Exec(classesSQL); err != nil {
		return fmt.Errorf("create classes table: %w", err)
	}

	testsSQL := `
		CREATE TABLE IF NOT EXISTS tests (
			class_id TEXT NOT NULL,
			test_id TEXT NOT NULL,
			name TEXT NOT NULL,
			pass INTEGER NOT NULL,
			methods INTEGER DEFAULT 0,
			statements INTEGER DEFAULT 0,
			PRIMARY KEY (class_id, test_id),
			FOREIGN KEY (class_id) REFERENCES classes(id)
		)
	`
	if _, err := db.Exec(testsSQL); err != nil {
		return fmt.Errorf("create tests table: %w", err)
	}

	lineTestsSQL := `
		CREATE TABLE IF NOT EXISTS line_tests (
			class_id TEXT NOT NULL,
			line INTEGER NOT NULL,
			test_id TEXT NOT NULL,
			PRIMARY KEY (class_id, line, test_id),
			FOREIGN KEY (class_id) REFERENCES classes(id)
		)
	`
	if _, err := db.Exec(lineTestsSQL); err != nil {
		return fmt.Errorf("create line_tests table: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, ord)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_coverage ON nodes(coverage_pct)`,
		`CREATE INDEX IF NOT EXISTS idx_tests_name ON tests(name)`,
		`CREATE INDEX IF NOT EXISTS idx_line_tests_test ON line_tests(test_id)`,
	}

	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}

	return nil
}

// CreateFTSIndex creates the FTS5 full-text index over node ids and labels.
// This must be called after nodes are inserted.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			id,
			label,
			content='nodes',
			content_rowid='rowid',
			tokenize='unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}

	if _, err := db.Exec(`INSERT INTO nodes_fts(nodes_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}

	return nil
}

// OptimizeDatabase runs optimizations for httpvfs streaming.
// Call this as the final step before closing the database.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 1024 // Default optimal for httpvfs
	}

	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}

	for _, sql := range optimizations {
		if _, err := db.Exec(sql); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	_, _ = db.Exec(`INSERT INTO nodes_fts(nodes_fts) VALUES('optimize')`)

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	sql := `INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`
	_, err := db.Exec(sql, key, value)
	return err
}
