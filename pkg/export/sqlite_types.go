package export

import "time"

// ExportNode is one row of the flattened hierarchy.
type ExportNode struct {
	ID          string   `json:"id"`
	ParentID    string   `json:"parent_id,omitempty"`
	Depth       int      `json:"depth"`
	Order       int      `json:"ord"`
	Text        string   `json:"text"`
	Label       string   `json:"label"`
	Href        string   `json:"href,omitempty"`
	Coverage    string   `json:"coverage,omitempty"`
	CoveragePct *float64 `json:"coverage_pct,omitempty"`
	DOMKey      string   `json:"dom_key"`
}

// ExportMeta is written to data/meta.json and mirrored in the meta table.
type ExportMeta struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	NodeCount   int       `json:"node_count"`
	ClassCount  int       `json:"class_count"`
	TestCount   int       `json:"test_count"`
	Title       string    `json:"title,omitempty"`
}

// SQLiteExportConfig tunes the database for static hosting, where browsers
// read it with HTTP range requests.
type SQLiteExportConfig struct {
	Title string

	// Databases larger than ChunkThreshold bytes are split into ChunkSize
	// pieces next to the original.
	ChunkThreshold int64
	ChunkSize      int64

	IncludeJSON bool // Also write data/nodes.json and data/meta.json
	PageSize    int  // SQLite page size; small pages mean small range reads
}

// DefaultSQLiteExportConfig splits databases over 5 MiB into 1 MiB chunks.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{
		ChunkThreshold: 5 << 20,
		ChunkSize:      1 << 20,
		IncludeJSON:    true,
		PageSize:       1024,
	}
}

// ChunkConfig is written next to the database as <name>.config.json: whether
// and how the database was split.
type ChunkConfig struct {
	Chunked    bool        `json:"chunked"`
	ChunkCount int         `json:"chunk_count"`
	ChunkSize  int64       `json:"chunk_size"`
	TotalSize  int64       `json:"total_size"`
	Hash       string      `json:"hash,omitempty"` // sha256 of the whole file
	Chunks     []ChunkInfo `json:"chunks,omitempty"`
}

// ChunkInfo is one piece of a split database.
type ChunkInfo struct {
	Path string `json:"path"`
	Hash string `json:"hash,omitempty"`
	Size int64  `json:"size,omitempty"`
}
