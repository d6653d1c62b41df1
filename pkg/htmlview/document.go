// Package htmlview projects a package tree onto an HTML document.
//
// Document implements tree.View. A full Render builds one <li> per node;
// every later change touches only the affected row, the badge strip or a
// container's visibility, mirroring what a browser-side widget would do to
// its live DOM. The document is serialized with WriteTo.
package htmlview

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vanderheijden86/covtree/pkg/tree"
)

// DefaultIndentWidth is the per-depth indent in pixels.
const DefaultIndentWidth = 28

// Arrow glyphs for closed and open packages.
const (
	ArrowClosed = "▸"
	ArrowOpen   = "▾"
)

// Options configure a Document.
type Options struct {
	IndentWidth   int    // Pixels per depth level; DefaultIndentWidth when zero
	URLPrefix     string // Prefixed to every href
	NoResultsText string
}

// row holds the elements of one node that later updates touch.
type row struct {
	node     *tree.Node
	li       *html.Node
	arrow    *html.Node // nil for leaves
	children *html.Node // nil for leaves
	selected bool
	hovered  bool
}

// Document is the HTML projection of one tree.
type Document struct {
	opts Options

	root        *html.Node // div.package-tree
	scroll      *html.Node // div.tree-scroll, the horizontally scrollable wrapper
	list        *html.Node // ul.tree-root
	placeholder *html.Node // div.tree-extent, sized to the widest visible row
	strip       *html.Node // div.badge-strip
	noResults   *html.Node // div.no-results

	rows       map[string]*row
	current    string
	extent     int
	scrollLeft int
}

var _ tree.View = (*Document)(nil)

// New returns an empty document with all containers in place.
func New(opts Options) *Document {
	if opts.IndentWidth <= 0 {
		opts.IndentWidth = DefaultIndentWidth
	}
	if opts.NoResultsText == "" {
		opts.NoResultsText = "No results"
	}

	d := &Document{
		opts:        opts,
		root:        element(atom.Div, "class", "package-tree", "tabindex", "0"),
		scroll:      element(atom.Div, "class", "tree-scroll"),
		list:        element(atom.Ul, "class", "tree-root"),
		placeholder: element(atom.Div, "class", "tree-extent"),
		strip:       element(atom.Div, "class", "badge-strip"),
		noResults:   element(atom.Div, "class", "no-results hidden"),
		rows:        make(map[string]*row),
	}
	setAttr(d.root, "data-cell", strconv.Itoa(d.CellWidth()))
	d.noResults.AppendChild(text(opts.NoResultsText))
	d.scroll.AppendChild(d.list)
	d.scroll.AppendChild(d.placeholder)
	d.root.AppendChild(d.scroll)
	d.root.AppendChild(d.strip)
	d.root.AppendChild(d.noResults)
	return d
}

// Render rebuilds every row from the given roots.
func (d *Document) Render(roots []*tree.Node) {
	removeChildren(d.list)
	d.rows = make(map[string]*row, len(d.rows))
	for _, n := range roots {
		d.list.AppendChild(d.buildRow(n))
	}
}

func (d *Document) buildRow(n *tree.Node) *html.Node {
	r := &row{node: n}
	// The data-* attributes carry what the page script needs to search,
	// refill the badge strip and size the extent without the tree.
	r.li = element(atom.Li,
		"id", n.DOMKey,
		"data-id", n.ID,
		"data-text", n.Text,
		"data-width", strconv.Itoa(tree.RowWidth(n)),
	)
	if n.Coverage != "" {
		setAttr(r.li, "data-coverage", n.Coverage)
	}

	div := element(atom.Div, "class", "row")
	indent := n.Depth * d.opts.IndentWidth
	div.AppendChild(element(atom.Span,
		"class", "spacer",
		"style", fmt.Sprintf("margin-left:-%dpx;padding-left:%dpx", indent, indent),
	))

	if n.HasChildren() {
		r.arrow = element(atom.Span, "class", "arrow", "data-event", tree.EventNodeToggle.String())
		div.AppendChild(r.arrow)
		div.AppendChild(element(atom.Span, "class", "icon icon-package"))
	} else {
		div.AppendChild(element(atom.Span, "class", "icon icon-class"))
	}

	var label *html.Node
	if n.IsLink() {
		label = element(atom.A,
			"href", d.opts.URLPrefix+n.Href,
			"data-event", tree.EventLinkActivate.String(),
		)
	} else {
		label = element(atom.Span, "class", "label")
	}
	appendMarkup(label, n.Text)
	div.AppendChild(label)
	r.li.AppendChild(div)

	if n.HasChildren() {
		r.children = element(atom.Ul, "class", "children")
		for _, c := range n.Children {
			r.children.AppendChild(d.buildRow(c))
		}
		r.li.AppendChild(r.children)
	}

	d.rows[n.ID] = r
	d.refreshRow(r)
	return r.li
}

// refreshRow rewrites the classes of one row from its node and view flags.
func (d *Document) refreshRow(r *row) {
	n := r.node
	var state string
	if r.children != nil {
		state = "closed"
		if n.IsOpen {
			state = "open"
		}
	}
	setClasses(r.li,
		"node",
		state,
		flag(n.IsHiddenBySearch, "search-hidden"),
		flag(n.IsSearchMatch, "match"),
		flag(n.ID == d.current, "current"),
		flag(r.selected, "selected"),
		flag(r.hovered, "hover"),
	)
	if r.arrow != nil {
		if n.IsOpen {
			setText(r.arrow, ArrowOpen)
		} else {
			setText(r.arrow, ArrowClosed)
		}
	}
	if r.children != nil {
		setClasses(r.children, "children", flag(!n.IsOpen, "hidden"))
	}
}

func flag(on bool, name string) string {
	if on {
		return name
	}
	return ""
}

// UpdateNode refreshes the row of n only.
func (d *Document) UpdateNode(n *tree.Node) {
	if r := d.rows[n.ID]; r != nil {
		d.refreshRow(r)
	}
}

// UpdateBadges rebuilds the badge strip with one slot per visible row.
func (d *Document) UpdateBadges(visible []*tree.Node) {
	removeChildren(d.strip)
	for _, n := range visible {
		slot := element(atom.Div, "class", "badge-slot", "data-id", n.ID)
		appendMarkup(slot, n.Coverage)
		d.strip.AppendChild(slot)
	}
}

// UpdateExtent sizes the placeholder to the widest visible row. Cells are
// converted with half an indent each, matching tree.IndentCells per level.
func (d *Document) UpdateExtent(cells int) {
	d.extent = cells * d.CellWidth()
	setAttr(d.placeholder, "style", "width:"+strconv.Itoa(d.extent)+"px")
}

// CellWidth is the pixel width of one tree cell.
func (d *Document) CellWidth() int {
	w := d.opts.IndentWidth / tree.IndentCells
	if w < 1 {
		w = 1
	}
	return w
}

// SetSelected toggles the keyboard highlight on a row.
func (d *Document) SetSelected(id string, on bool) {
	if r := d.rows[id]; r != nil {
		r.selected = on
		d.refreshRow(r)
	}
}

// SetHovered toggles the pointer highlight on a row.
func (d *Document) SetHovered(id string, on bool) {
	if r := d.rows[id]; r != nil {
		r.hovered = on
		d.refreshRow(r)
	}
}

// SetCurrent marks the row of the page being displayed.
func (d *Document) SetCurrent(id string) {
	prev := d.current
	d.current = id
	setAttr(d.root, "data-current", id)
	if r := d.rows[prev]; r != nil {
		d.refreshRow(r)
	}
	if r := d.rows[id]; r != nil {
		d.refreshRow(r)
	}
}

// ShowRootList shows or hides the whole tree.
func (d *Document) ShowRootList(show bool) {
	setClasses(d.list, "tree-root", flag(!show, "hidden"))
}

// ShowNoResults shows or hides the "no results" indicator.
func (d *Document) ShowNoResults(show bool) {
	setClasses(d.noResults, "no-results", flag(!show, "hidden"))
}

// SetScrollLeft records the tree's horizontal scroll offset and shifts the
// badge strip by it so badges stay on a fixed rail.
func (d *Document) SetScrollLeft(px int) {
	if px < 0 {
		px = 0
	}
	d.scrollLeft = px
	if px == 0 {
		removeAttr(d.strip, "style")
		return
	}
	setAttr(d.strip, "style", "left:"+strconv.Itoa(px)+"px")
}

// ScrollLeft returns the recorded scroll offset.
func (d *Document) ScrollLeft() int { return d.scrollLeft }

// ExtentPx returns the placeholder width in pixels.
func (d *Document) ExtentPx() int { return d.extent }

// Row returns the <li> element of a node, or nil.
func (d *Document) Row(id string) *html.Node {
	if r := d.rows[id]; r != nil {
		return r.li
	}
	return nil
}

// Badges returns the text of each badge slot in order.
func (d *Document) Badges() []string {
	var out []string
	for c := d.strip.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, textContent(c))
	}
	return out
}

// RootListShown reports whether the tree list is displayed.
func (d *Document) RootListShown() bool { return !HasClass(d.list, "hidden") }

// NoResultsShown reports whether the "no results" indicator is displayed.
func (d *Document) NoResultsShown() bool { return !HasClass(d.noResults, "hidden") }

// Node returns the document root element.
func (d *Document) Node() *html.Node { return d.root }

// WriteTo serializes the document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := html.Render(cw, d.root)
	return cw.n, err
}

// String returns the serialized document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return ""
	}
	return buf.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
