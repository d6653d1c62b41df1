package export

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/metrics"
	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/report"
	"github.com/vanderheijden86/covtree/pkg/tree"

	_ "modernc.org/sqlite"
)

// DatabaseName is the file name of the exported database.
const DatabaseName = "covtree.sqlite3"

// SQLiteExporter exports a dataset and its class records to a SQLite database
// for static deployment.
type SQLiteExporter struct {
	Dataset *model.Dataset
	Records map[string]*model.ClassCoverage
	Config  SQLiteExportConfig
}

// NewSQLiteExporter creates a new exporter with the given data.
func NewSQLiteExporter(ds *model.Dataset, records map[string]*model.ClassCoverage) *SQLiteExporter {
	return &SQLiteExporter{
		Dataset: ds,
		Records: records,
		Config:  DefaultSQLiteExportConfig(),
	}
}

// Export writes the SQLite database and supporting files to the output directory.
func (e *SQLiteExporter) Export(outputDir string) error {
	defer debug.LogEnterExit("export.SQLite")()
	defer metrics.Timer(metrics.SQLiteExport)()

	nodes, err := e.ExportedNodes()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	dbPath := filepath.Join(outputDir, DatabaseName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := insertNodes(db, nodes); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}

	if err := e.insertClasses(db); err != nil {
		return fmt.Errorf("insert classes: %w", err)
	}

	if err := CreateFTSIndex(db); err != nil {
		fmt.Printf("Warning: FTS5 not available: %v\n", err)
	}

	if err := e.insertMeta(db, len(nodes)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	// Close before chunking so the file is complete on disk
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	if e.Config.IncludeJSON {
		if err := e.writeJSONOutputs(filepath.Join(outputDir, "data"), nodes); err != nil {
			return fmt.Errorf("write json outputs: %w", err)
		}
	}

	if err := e.chunkIfNeeded(outputDir, dbPath); err != nil {
		return fmt.Errorf("chunk database: %w", err)
	}

	return nil
}

// ExportedNodes flattens the dataset in pre-order, resolving parents, depths
// and DOM keys through the tree store.
func (e *SQLiteExporter) ExportedNodes() ([]ExportNode, error) {
	t, err := tree.FromDataset(e.Dataset, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]ExportNode, 0, t.Len())
	t.Iterate(func(n, _ *tree.Node) bool {
		exp := ExportNode{
			ID:       n.ID,
			ParentID: n.ParentID,
			Depth:    n.Depth,
			Order:    len(out),
			Text:     n.Text,
			Label:    model.PlainText(n.Text),
			Href:     n.Href,
			Coverage: n.Coverage,
			DOMKey:   t.DOMKey(n.ID),
		}
		if pct, ok := report.ParsePercent(n.Coverage); ok {
			exp.CoveragePct = &pct
		}
		out = append(out, exp)
		return true
	})
	return out, nil
}

func insertNodes(db *sql.DB, nodes []ExportNode) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent_id, depth, ord, text, label, href, coverage, coverage_pct, dom_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range nodes {
		_, err := stmt.Exec(
			n.ID,
			nullString(n.ParentID),
			n.Depth,
			n.Order,
			n.Text,
			n.Label,
			nullString(n.Href),
			nullString(n.Coverage),
			n.CoveragePct,
			n.DOMKey,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// insertClasses writes classes, their tests and the line-to-test mapping.
func (e *SQLiteExporter) insertClasses(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	classStmt, err := tx.Prepare(`
		INSERT INTO classes (id, name, start_line, end_line, method_count, pass_count, fail_count, covered_lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer classStmt.Close()

	testStmt, err := tx.Prepare(`
		INSERT INTO tests (class_id, test_id, name, pass, methods, statements)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer testStmt.Close()

	lineStmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO line_tests (class_id, line, test_id)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer lineStmt.Close()

	for _, id := range e.classIDs() {
		c := e.Records[id]
		if _, err := classStmt.Exec(
			id, c.Name, c.StartLine, c.EndLine,
			len(c.Methods), c.PassCount(), c.FailCount(), c.CoveredLines(),
		); err != nil {
			return fmt.Errorf("insert class %s: %w", id, err)
		}

		for _, testID := range c.SortedTestIDs() {
			t := c.Tests[testID]
			if _, err := testStmt.Exec(id, testID, t.Name, t.Pass, t.Methods, t.Statements); err != nil {
				return fmt.Errorf("insert test %s/%s: %w", id, testID, err)
			}
		}

		for i, tests := range c.SrcFileLines {
			for _, testID := range tests {
				if _, err := lineStmt.Exec(id, i+1, testID); err != nil {
					return fmt.Errorf("insert line %d of %s: %w", i+1, id, err)
				}
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) classIDs() []string {
	ids := make([]string, 0, len(e.Records))
	for id, c := range e.Records {
		if c != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (e *SQLiteExporter) testCount() int {
	n := 0
	for _, c := range e.Records {
		if c != nil {
			n += len(c.Tests)
		}
	}
	return n
}

// insertMeta inserts export metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB, nodeCount int) error {
	meta := map[string]string{
		"version":        "1.0.0",
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"node_count":     fmt.Sprintf("%d", nodeCount),
		"class_count":    fmt.Sprintf("%d", len(e.classIDs())),
		"test_count":     fmt.Sprintf("%d", e.testCount()),
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
	}
	if e.Dataset.CurrentNodeID != "" {
		meta["current_node_id"] = e.Dataset.CurrentNodeID
	}
	if e.Dataset.URLPrefix != "" {
		meta["url_prefix"] = e.Dataset.URLPrefix
	}
	if e.Config.Title != "" {
		meta["title"] = e.Config.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	return nil
}

// writeJSONOutputs writes the flattened nodes and export metadata as JSON.
func (e *SQLiteExporter) writeJSONOutputs(dataDir string, nodes []ExportNode) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dataDir, "nodes.json"), nodes); err != nil {
		return fmt.Errorf("write nodes.json: %w", err)
	}
	meta := ExportMeta{
		Version:     "1.0.0",
		GeneratedAt: time.Now().UTC(),
		NodeCount:   len(nodes),
		ClassCount:  len(e.classIDs()),
		TestCount:   e.testCount(),
		Title:       e.Config.Title,
	}
	if err := writeJSON(filepath.Join(dataDir, "meta.json"), meta); err != nil {
		return fmt.Errorf("write meta.json: %w", err)
	}
	return nil
}

// writeJSON writes data as JSON to a file.
func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// chunkIfNeeded splits the database into chunks if it exceeds the threshold.
func (e *SQLiteExporter) chunkIfNeeded(outputDir, dbPath string) error {
	info, err := os.Stat(dbPath)
	if err != nil {
		return err
	}

	configPath := filepath.Join(outputDir, DatabaseName+".config.json")
	config := ChunkConfig{
		TotalSize: info.Size(),
	}

	if e.Config.ChunkThreshold <= 0 || info.Size() < e.Config.ChunkThreshold {
		return writeJSON(configPath, config)
	}

	chunkSize := e.Config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultSQLiteExportConfig().ChunkSize
	}

	chunksDir := filepath.Join(outputDir, "chunks")
	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		return fmt.Errorf("create chunks dir: %w", err)
	}

	f, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("hash database: %w", err)
	}
	config.Hash = hex.EncodeToString(hasher.Sum(nil))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for i := 0; ; i++ {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			name := fmt.Sprintf("%05d.bin", i)
			if err := os.WriteFile(filepath.Join(chunksDir, name), buf[:n], 0644); err != nil {
				return fmt.Errorf("write chunk %d: %w", i, err)
			}
			h := sha256.Sum256(buf[:n])
			config.Chunks = append(config.Chunks, ChunkInfo{
				Path: filepath.ToSlash(filepath.Join("chunks", name)),
				Hash: hex.EncodeToString(h[:]),
				Size: int64(n),
			})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read for chunk: %w", err)
		}
	}

	config.Chunked = true
	config.ChunkCount = len(config.Chunks)
	config.ChunkSize = chunkSize

	return writeJSON(configPath, config)
}
