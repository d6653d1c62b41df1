package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/metrics"
	"github.com/vanderheijden86/covtree/pkg/model"
)

// DataDirEnvVar is the name of the environment variable for a custom report
// data directory.
const DataDirEnvVar = "COVTREE_DATA_DIR"

// ClassesDirName is the directory, next to the dataset, holding one JSON
// record per class.
const ClassesDirName = "classes"

// PreferredDatasetNames defines the priority order for looking up dataset files.
var PreferredDatasetNames = []string{"package-tree.json", "package-tree.yaml", "package-tree.yml", "tree.json"}

// ErrUnsupportedFormat is returned for dataset files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format names a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// GetDataDir returns the report data directory, respecting COVTREE_DATA_DIR.
// Otherwise falls back to dir (or cwd if empty).
func GetDataDir(dir string) (string, error) {
	if envDir := os.Getenv(DataDirEnvVar); envDir != "" {
		return envDir, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return dir, nil
}

// FindDatasetPath locates the dataset file in dir. Preferred names win,
// then any non-empty .json/.yaml file in name order. Backups are skipped.
func FindDatasetPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if _, err := FormatForPath(name); err != nil {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no dataset file found in %s", dir)
	}

	for _, preferred := range PreferredDatasetNames {
		for _, name := range candidates {
			if name == preferred && nonEmpty(filepath.Join(dir, name)) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	for _, name := range candidates {
		if nonEmpty(filepath.Join(dir, name)) {
			return filepath.Join(dir, name), nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

func nonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// LoadDataset reads and validates a dataset file. The encoding follows the
// file extension.
func LoadDataset(path string) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no dataset found at %s", path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	ds, err := ParseDataset(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	debug.Log("loader: %s has %d nodes", path, ds.CountNodes())
	return ds, nil
}

// ParseDataset decodes a dataset. A JSON document may also be a bare array
// of root nodes.
func ParseDataset(r io.Reader, format Format) (*model.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	data = stripBOM(data)

	var ds model.Dataset
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &ds.Nodes); err != nil {
				return nil, fmt.Errorf("decode dataset: %w", err)
			}
			if ds.Nodes == nil {
				ds.Nodes = []*model.Node{}
			}
		} else if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ClassOptions configures LoadClassRecordsWithOptions.
type ClassOptions struct {
	// WarningHandler is called for records that fail to decode or carry no
	// id. If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// Concurrency bounds the number of files decoded at once. If 0, uses
	// runtime.NumCPU().
	Concurrency int
}

// LoadClassRecords reads every *.json class record in dir, keyed by class id.
// A missing directory means no records.
func LoadClassRecords(ctx context.Context, dir string) (map[string]*model.ClassCoverage, error) {
	return LoadClassRecordsWithOptions(ctx, dir, ClassOptions{})
}

// LoadClassRecordsWithOptions is like LoadClassRecords with custom options.
// Malformed records are skipped with a warning; read errors abort the load.
func LoadClassRecordsWithOptions(ctx context.Context, dir string, opts ClassOptions) (map[string]*model.ClassCoverage, error) {
	defer metrics.Timer(metrics.ClassRecordLoad)()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*model.ClassCoverage{}, nil
		}
		return nil, fmt.Errorf("failed to read class directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	records := make([]*model.ClassCoverage, len(files))
	problems := make([]string, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, name := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			var rec model.ClassCoverage
			if err := json.Unmarshal(stripBOM(data), &rec); err != nil {
				problems[i] = fmt.Sprintf("skipping malformed class record %s: %v", name, err)
				return nil
			}
			if rec.ID == "" {
				problems[i] = fmt.Sprintf("skipping class record %s: missing id", name)
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Files are visited in name order so a repeated id keeps the last file.
	out := make(map[string]*model.ClassCoverage, len(records))
	for i, rec := range records {
		if problems[i] != "" {
			warn(problems[i])
		}
		if rec != nil {
			out[rec.ID] = rec
		}
	}
	debug.Log("loader: %d class records from %s", len(out), dir)
	return out, nil
}

// Bundle is a dataset together with its class records.
type Bundle struct {
	Path    string
	Dataset *model.Dataset
	Records map[string]*model.ClassCoverage
}

// LoadBundle loads the dataset at path and, concurrently, the class records
// in the sibling classes directory.
func LoadBundle(ctx context.Context, path string) (*Bundle, error) {
	b := &Bundle{Path: path}
	var mu sync.Mutex
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ds, err := LoadDataset(path)
		if err != nil {
			return err
		}
		mu.Lock()
		b.Dataset = ds
		mu.Unlock()
		return nil
	})
	eg.Go(func() error {
		recs, err := LoadClassRecords(gctx, filepath.Join(filepath.Dir(path), ClassesDirName))
		if err != nil {
			return err
		}
		mu.Lock()
		b.Records = recs
		mu.Unlock()
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	debug.LogIf(len(b.Records) == 0, "loader: no class records next to %s", path)
	return b, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
