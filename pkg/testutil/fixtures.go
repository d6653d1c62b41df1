package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// DatasetFile and ClassesDir mirror the layout the loader looks for.
const (
	DatasetFile = "package-tree.json"
	ClassesDir  = "classes"
)

// SaveDataset writes ds and records into dir in the loader's layout and
// returns the dataset path. Record files are named after the class id.
func SaveDataset(dir string, ds *model.Dataset, records map[string]*model.ClassCoverage) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, DatasetFile)
	if err := writeJSON(path, ds); err != nil {
		return "", err
	}
	if len(records) == 0 {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Join(dir, ClassesDir), 0o755); err != nil {
		return "", err
	}
	for id, rec := range records {
		if err := writeJSON(filepath.Join(dir, ClassesDir, id+".json"), rec); err != nil {
			return "", err
		}
	}
	return path, nil
}

// WriteDataset is SaveDataset failing the test on error.
func WriteDataset(t *testing.T, dir string, ds *model.Dataset, records map[string]*model.ClassCoverage) string {
	t.Helper()
	path, err := SaveDataset(dir, ds, records)
	if err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Walk visits the nodes of ds in pre-order with their parent (nil for roots).
func Walk(ds *model.Dataset, fn func(n, parent *model.Node)) {
	var walk func(nodes []*model.Node, parent *model.Node)
	walk = func(nodes []*model.Node, parent *model.Node) {
		for _, n := range nodes {
			fn(n, parent)
			walk(n.Children, n)
		}
	}
	walk(ds.Nodes, nil)
}

// IDs returns every node id of ds in pre-order.
func IDs(ds *model.Dataset) []string {
	var ids []string
	Walk(ds, func(n, _ *model.Node) { ids = append(ids, n.ID) })
	return ids
}

// FindNode returns the node with the given id, or nil.
func FindNode(ds *model.Dataset, id string) *model.Node {
	var found *model.Node
	Walk(ds, func(n, _ *model.Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}

// AssertNoDuplicateIDs verifies every node id is unique.
func AssertNoDuplicateIDs(t *testing.T, ds *model.Dataset) {
	t.Helper()
	seen := make(map[string]bool)
	for _, id := range IDs(ds) {
		if seen[id] {
			t.Errorf("duplicate node id: %s", id)
		}
		seen[id] = true
	}
}

// AssertNestedIDs verifies every child id extends its parent's id by one
// dotted segment.
func AssertNestedIDs(t *testing.T, ds *model.Dataset) {
	t.Helper()
	Walk(ds, func(n, parent *model.Node) {
		if parent == nil {
			return
		}
		rest, ok := strings.CutPrefix(n.ID, parent.ID+".")
		if !ok || rest == "" || strings.Contains(rest, ".") {
			t.Errorf("node %s is not a direct child id of %s", n.ID, parent.ID)
		}
	})
}
