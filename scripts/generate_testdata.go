//go:build ignore

// generate_testdata.go creates standard coverage datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates, each with a classes/ directory of class records:
//
//	testdata/benchmark/small/package-tree.json   (depth 2, breadth 4)
//	testdata/benchmark/medium/package-tree.json  (depth 3, breadth 6)
//	testdata/benchmark/large/package-tree.json   (depth 4, breadth 7)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/covtree/pkg/testutil"
)

type datasetSpec struct {
	name           string
	depth, breadth int
}

var datasets = []datasetSpec{
	{"small", 2, 4},
	{"medium", 3, 6},
	{"large", 4, 7},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	for _, spec := range datasets {
		gen := testutil.NewDefault()
		ds := gen.Tree(spec.depth, spec.breadth)
		recs := gen.ClassRecords(ds)

		path, err := testutil.SaveDataset(filepath.Join(outputDir, spec.name), ds, recs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", spec.name, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s: %d nodes, %d class records\n", path, ds.CountNodes(), len(recs))
	}
}
