// Package testutil builds coverage datasets of known shape for tests and
// benchmarks. All generators are deterministic for a given seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed        int64  // 0 picks the default seed, not a random one
	Root        string // Dotted id of the top package (default "org.example")
	MinCoverage float64
	MaxCoverage float64
	MaxLines    int // Upper bound of generated class lengths
	MaxTests    int // Upper bound of tests per class record
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Root:        "org.example",
		MinCoverage: 0,
		MaxCoverage: 100,
		MaxLines:    40,
		MaxTests:    4,
	}
}

// Generator creates datasets and class records.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator, filling unset config fields from DefaultConfig.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	if cfg.MaxCoverage <= cfg.MinCoverage {
		cfg.MinCoverage, cfg.MaxCoverage = def.MinCoverage, def.MaxCoverage
	}
	if cfg.MaxLines < 3 {
		cfg.MaxLines = def.MaxLines
	}
	if cfg.MaxTests < 1 {
		cfg.MaxTests = def.MaxTests
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Shapes
// ============================================================================

// Tree creates a single root package with depth levels of subpackages below
// it. Every package has breadth subpackages (except the deepest) and breadth
// classes. The current node is the first class of the first deepest package.
func (g *Generator) Tree(depth, breadth int) *model.Dataset {
	root := g.pkg(g.cfg.Root)
	var current string
	var build func(parent *model.Node, level int)
	build = func(parent *model.Node, level int) {
		if level < depth {
			for i := 0; i < breadth; i++ {
				child := g.pkg(fmt.Sprintf("%s.p%d", parent.ID, i))
				build(child, level+1)
				parent.Children = append(parent.Children, child)
			}
		}
		for i := 0; i < breadth; i++ {
			c := g.class(parent.ID, fmt.Sprintf("Class%d", i))
			parent.Children = append(parent.Children, c)
			if current == "" && level == depth {
				current = c.ID
			}
		}
	}
	build(root, 0)
	return &model.Dataset{Nodes: []*model.Node{root}, CurrentNodeID: current}
}

// Flat creates one package holding n classes; the first is current.
func (g *Generator) Flat(n int) *model.Dataset {
	root := g.pkg(g.cfg.Root)
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, g.class(root.ID, fmt.Sprintf("Class%d", i)))
	}
	ds := &model.Dataset{Nodes: []*model.Node{root}}
	if n > 0 {
		ds.CurrentNodeID = root.Children[0].ID
	}
	return ds
}

// Chain creates depth nested packages with a single class at the bottom, the
// current node.
func (g *Generator) Chain(depth int) *model.Dataset {
	root := g.pkg(g.cfg.Root)
	parent := root
	for i := 0; i < depth; i++ {
		child := g.pkg(fmt.Sprintf("%s.c%d", parent.ID, i))
		parent.Children = append(parent.Children, child)
		parent = child
	}
	leaf := g.class(parent.ID, "Leaf")
	parent.Children = append(parent.Children, leaf)
	return &model.Dataset{Nodes: []*model.Node{root}, CurrentNodeID: leaf.ID}
}

// Forest creates n independent root packages named root0..root{n-1}, each
// holding breadth classes. Root ids carry no dot, so all roots are siblings.
func (g *Generator) Forest(n, breadth int) *model.Dataset {
	ds := &model.Dataset{Nodes: []*model.Node{}}
	for i := 0; i < n; i++ {
		r := g.pkg(fmt.Sprintf("root%d", i))
		for j := 0; j < breadth; j++ {
			r.Children = append(r.Children, g.class(r.ID, fmt.Sprintf("Class%d", j)))
		}
		ds.Nodes = append(ds.Nodes, r)
	}
	return ds
}

func (g *Generator) pkg(id string) *model.Node {
	return &model.Node{
		ID:       id,
		Text:     id[strings.LastIndex(id, ".")+1:],
		Href:     strings.ReplaceAll(id, ".", "/") + "/index.html",
		Coverage: g.coverage(),
	}
}

func (g *Generator) class(pkgID, name string) *model.Node {
	return &model.Node{
		ID:       pkgID + "." + name,
		Text:     name,
		Href:     strings.ReplaceAll(pkgID, ".", "/") + "/" + name + ".html",
		Coverage: g.coverage(),
	}
}

func (g *Generator) coverage() string {
	span := g.cfg.MaxCoverage - g.cfg.MinCoverage
	pct := g.cfg.MinCoverage + g.rng.Float64()*span
	return fmt.Sprintf(`<span class="badge">%.1f%%</span>`, pct)
}

// ============================================================================
// Class records
// ============================================================================

// ClassRecords creates one record per class of ds. Childless packages
// (href ending in index.html) get none.
func (g *Generator) ClassRecords(ds *model.Dataset) map[string]*model.ClassCoverage {
	out := make(map[string]*model.ClassCoverage)
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			if n.IsPackage() {
				walk(n.Children)
				continue
			}
			if !strings.HasSuffix(n.Href, "/index.html") {
				out[n.ID] = g.Record(n.ID, n.Text)
			}
		}
	}
	walk(ds.Nodes)
	return out
}

// Record creates a record for one class: a few methods, a few tests and a
// random subset of lines covered by each test.
func (g *Generator) Record(id, name string) *model.ClassCoverage {
	lines := 3 + g.rng.Intn(g.cfg.MaxLines-2)
	rec := &model.ClassCoverage{
		Name:         name,
		ID:           id,
		StartLine:    1,
		EndLine:      lines,
		Tests:        map[string]model.TestRecord{},
		SrcFileLines: make([][]string, lines),
	}

	for start := 1; start <= lines; {
		end := min(lines, start+1+g.rng.Intn(5))
		rec.Methods = append(rec.Methods, model.MethodRange{StartLine: start, EndLine: end})
		start = end + 1
	}

	tests := 1 + g.rng.Intn(g.cfg.MaxTests)
	for i := 0; i < tests; i++ {
		tid := fmt.Sprintf("t%d", i)
		hit := 0
		for l := range rec.SrcFileLines {
			if g.rng.Intn(2) == 0 {
				rec.SrcFileLines[l] = append(rec.SrcFileLines[l], tid)
				hit++
			}
		}
		rec.Tests[tid] = model.TestRecord{
			Name:       fmt.Sprintf("test%s%d", name, i),
			Pass:       g.rng.Intn(5) != 0,
			Methods:    1 + g.rng.Intn(len(rec.Methods)),
			Statements: hit,
		}
	}
	return rec
}

// ============================================================================
// Quick constructors
// ============================================================================

// QuickTree is NewDefault().Tree(depth, breadth).
func QuickTree(depth, breadth int) *model.Dataset {
	return NewDefault().Tree(depth, breadth)
}

// QuickChain is NewDefault().Chain(depth).
func QuickChain(depth int) *model.Dataset {
	return NewDefault().Chain(depth)
}

// Empty is a valid dataset without nodes.
func Empty() *model.Dataset {
	return &model.Dataset{Nodes: []*model.Node{}}
}
