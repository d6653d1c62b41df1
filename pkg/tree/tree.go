// Package tree implements the package/class navigation widget of a coverage
// report: a node store with id and DOM-key indexes, open/close state,
// visibility, search filtering and keyboard navigation.
//
// The tree only mutates its own state. Every visible consequence is pushed to
// a View, so the same tree drives the static HTML pages and the terminal
// browser, and can be tested without either.
package tree

import (
	"errors"
	"fmt"
	"time"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/metrics"
	"github.com/vanderheijden86/covtree/pkg/model"
)

// Errors returned by New.
var (
	ErrNoNodes     = model.ErrNoNodes
	ErrDuplicateID = errors.New("duplicate node id")
	ErrEmptyID     = errors.New("node has an empty id")
)

// Node is a package or class in the tree together with its derived state.
//
// Children are owned by the node. ParentID is a back-reference resolved
// through the tree's index; it is empty for roots.
type Node struct {
	ID       string
	DOMKey   string // Indexed DOM identifier, see DOMKey
	Text     string
	Href     string
	Coverage string
	Children []*Node

	ParentID         string
	Depth            int  // 0 for roots
	IsOpen           bool // Meaningful only for nodes with children
	IsHiddenBySearch bool
	IsSearchMatch    bool // Node itself matched the active query

	source *model.Node
}

// HasChildren reports whether the node can be opened or closed.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// IsLink reports whether the node renders as an activatable link.
func (n *Node) IsLink() bool {
	return n.Href != ""
}

// Source returns the host's node this one was built from.
func (n *Node) Source() *model.Node {
	return n.source
}

// Config is the read-once construction input.
type Config struct {
	Nodes         []*model.Node
	CurrentNodeID string // Revealed and marked on load
	URLPrefix     string // Prefixed to every href
	View          View
	Navigator     Navigator
}

// Tree is one widget instance. It owns its node store; instances share
// nothing.
type Tree struct {
	roots      []*Node
	byID       map[string]*Node
	domKeyByID map[string]string

	currentID string
	urlPrefix string
	view      View
	nav       Navigator

	// Search state
	rootListShown bool
	noResults     bool
	lastSearch    SearchResult

	// Keyboard state; selectedIndex is -1 when nothing is selected
	selectedID    string
	selectedIndex int
	hoveredID     string

	lastNavigation string
}

// New builds the store from cfg.Nodes, renders it, and opens the path to the
// current node. A nil node list is a configuration error.
func New(cfg Config) (*Tree, error) {
	if cfg.Nodes == nil {
		return nil, ErrNoNodes
	}
	defer metrics.Timer(metrics.TreeBuild)()
	start := time.Now()

	t := &Tree{
		currentID:     cfg.CurrentNodeID,
		urlPrefix:     cfg.URLPrefix,
		view:          cfg.View,
		nav:           cfg.Navigator,
		rootListShown: true,
		selectedIndex: -1,
	}
	if t.view == nil {
		t.view = NopView{}
	}
	if t.nav == nil {
		t.nav = NavigatorFunc(func(url string) { t.lastNavigation = url })
	}

	if err := t.prepare(cfg.Nodes); err != nil {
		return nil, fmt.Errorf("prepare tree: %w", err)
	}

	t.Render()
	t.view.ShowRootList(true)
	t.view.ShowNoResults(false)
	if n := t.byID[t.currentID]; n != nil {
		t.openAncestors(n, true)
		t.view.SetCurrent(n.ID)
	}
	t.refresh()

	debug.LogTiming(fmt.Sprintf("tree.New (%d nodes)", len(t.byID)), time.Since(start))
	return t, nil
}

// FromDataset builds a tree from a loaded dataset.
func FromDataset(ds *model.Dataset, view View, nav Navigator) (*Tree, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return New(Config{
		Nodes:         ds.Nodes,
		CurrentNodeID: ds.CurrentNodeID,
		URLPrefix:     ds.URLPrefix,
		View:          view,
		Navigator:     nav,
	})
}

// CurrentID returns the configured current node id.
func (t *Tree) CurrentID() string { return t.currentID }

// URLPrefix returns the prefix applied to hrefs.
func (t *Tree) URLPrefix() string { return t.urlPrefix }

// LinkURL returns the navigable URL of a node, or "" for plain labels.
func (t *Tree) LinkURL(n *Node) string {
	if n == nil || !n.IsLink() {
		return ""
	}
	return t.urlPrefix + n.Href
}

// LastNavigation returns the last URL handed to the default navigator.
// It stays empty when a custom Navigator was configured.
func (t *Tree) LastNavigation() string { return t.lastNavigation }

// HoveredID returns the id of the row under the pointer, if any.
func (t *Tree) HoveredID() string { return t.hoveredID }
