// Package report writes the static HTML coverage report: an index page and
// one page per linked package or class, each embedding the package tree
// opened at that page's node.
package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/htmlview"
	"github.com/vanderheijden86/covtree/pkg/metrics"
	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/tree"
)

// IndexPage is the file name of the report's landing page.
const IndexPage = "index.html"

// ErrUnsafeHref is returned for hrefs that would write outside the output
// directory.
var ErrUnsafeHref = errors.New("href escapes the output directory")

// Generator renders a dataset into a directory of HTML pages.
type Generator struct {
	OutputDir   string
	Title       string
	URLPrefix   string // Overrides the dataset's prefix; empty means relative links
	IndentWidth int    // Pixels per depth level
	Records     map[string]*model.ClassCoverage
	Concurrency int // Pages rendered in parallel; NumCPU when zero
}

// Page is one file the generator writes.
type Page struct {
	Path   string // Relative to OutputDir, slash separated
	NodeID string // Current node of the page; empty for an index without one
}

type pageData struct {
	Title     string
	Heading   string
	Root      string
	Tree      template.HTML
	Legends   []template.HTML
	Node      *model.Node
	Class     *classView
	Generated string
}

// Pages lists the files Generate will write: the index, then every linked
// node in pre-order. Nodes sharing an href produce a single page for the
// first of them.
func Pages(ds *model.Dataset) ([]Page, error) {
	pages := []Page{{Path: IndexPage, NodeID: ds.CurrentNodeID}}
	seen := map[string]bool{IndexPage: true}

	var walk func([]*model.Node) error
	walk = func(nodes []*model.Node) error {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if n.Href != "" {
				p, err := cleanHref(n.Href)
				if err != nil {
					return fmt.Errorf("node %q: %w", n.ID, err)
				}
				if !seen[p] {
					seen[p] = true
					pages = append(pages, Page{Path: p, NodeID: n.ID})
				}
			}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(ds.Nodes); err != nil {
		return nil, err
	}
	return pages, nil
}

// cleanHref strips query and fragment and checks the path stays local.
func cleanHref(href string) (string, error) {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	p := filepath.Clean(filepath.FromSlash(href))
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeHref, href)
	}
	return filepath.ToSlash(p), nil
}

// RelativeRoot returns the "../" chain leading from page back to the
// report root.
func RelativeRoot(page string) string {
	return strings.Repeat("../", strings.Count(page, "/"))
}

// Generate writes every page plus the stylesheet and page script, and
// returns the number of pages written.
func (g *Generator) Generate(ctx context.Context, ds *model.Dataset) (int, error) {
	defer debug.LogEnterExit("report.Generate")()
	defer metrics.Timer(metrics.ReportGenerate)()

	if err := ds.Validate(); err != nil {
		return 0, err
	}
	pages, err := Pages(ds)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "style.css"), []byte(styleCSS), 0o644); err != nil {
		return 0, fmt.Errorf("write stylesheet: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, ScriptFile), []byte(treeScript), 0o644); err != nil {
		return 0, fmt.Errorf("write script: %w", err)
	}

	var legends []template.HTML
	for _, l := range Legends() {
		h, err := l.HTML()
		if err != nil {
			return 0, err
		}
		legends = append(legends, h)
	}

	tmpl, err := template.New("page").Funcs(funcMap).Parse(pageTemplate)
	if err != nil {
		return 0, fmt.Errorf("parse template: %w", err)
	}

	limit := g.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	generated := time.Now().Format("2006-01-02 15:04")
	for _, p := range pages {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := g.writePage(tmpl, ds, p, legends, generated); err != nil {
				return fmt.Errorf("page %s: %w", p.Path, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	debug.Log("report: wrote %d pages to %s", len(pages), g.OutputDir)
	return len(pages), nil
}

// RenderTree projects the dataset's tree with the given node as current and
// returns its HTML.
func (g *Generator) RenderTree(ds *model.Dataset, currentID, prefix string) (string, error) {
	doc := htmlview.New(htmlview.Options{IndentWidth: g.IndentWidth, URLPrefix: prefix})
	if _, err := tree.New(tree.Config{
		Nodes:         ds.Nodes,
		CurrentNodeID: currentID,
		URLPrefix:     prefix,
		View:          doc,
	}); err != nil {
		return "", err
	}
	return doc.String(), nil
}

func (g *Generator) prefixFor(ds *model.Dataset, page string) string {
	if g.URLPrefix != "" {
		return g.URLPrefix
	}
	if ds.URLPrefix != "" {
		return ds.URLPrefix
	}
	return RelativeRoot(page)
}

func (g *Generator) writePage(tmpl *template.Template, ds *model.Dataset, p Page, legends []template.HTML, generated string) error {
	defer metrics.Timer(metrics.PageRender)()

	treeHTML, err := g.RenderTree(ds, p.NodeID, g.prefixFor(ds, p.Path))
	if err != nil {
		return err
	}

	data := pageData{
		Title:     g.Title,
		Heading:   g.Title,
		Root:      RelativeRoot(p.Path),
		Tree:      template.HTML(treeHTML),
		Legends:   legends,
		Generated: generated,
	}
	if p.Path != IndexPage {
		data.Node = findNode(ds.Nodes, p.NodeID)
		if data.Node != nil {
			data.Heading = model.PlainText(data.Node.Text)
		}
		data.Class = newClassView(g.Records[p.NodeID])
	}

	out := filepath.Join(g.OutputDir, filepath.FromSlash(p.Path))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return writeBuffered(out, func(w io.Writer) error {
		if err := tmpl.Execute(w, data); err != nil {
			return fmt.Errorf("execute template: %w", err)
		}
		return nil
	})
}

// writeBuffered creates path and streams write into it. Flush and close
// errors are returned; a page is only complete once both succeed.
func writeBuffered(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(f, 64*1024)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func findNode(nodes []*model.Node, id string) *model.Node {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == id {
			return n
		}
		if found := findNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

var funcMap = template.FuncMap{
	"colorClass": ColorClass,
	"formatPct":  FormatPct,
	"badgeClass": BadgeClass,
	"markup": func(s string) template.HTML {
		// Labels and badges come from the report generator and carry its markup.
		return template.HTML(s)
	},
}
