package ui

import (
	"github.com/vanderheijden86/covtree/pkg/tree"
)

// TermView is the terminal projection of a tree. It holds what the tree
// last pushed: the visible rows in order, the scrollable extent and the
// highlight state. The browser model draws frames from it.
type TermView struct {
	roots   []*tree.Node
	visible []*tree.Node
	extent  int

	selected string
	hovered  string
	current  string

	rootListShown bool
	noResults     bool

	// Count of UpdateNode calls since the last full Render
	nodeUpdates int
}

// NewTermView returns an empty projection.
func NewTermView() *TermView {
	return &TermView{rootListShown: true}
}

var _ tree.View = (*TermView)(nil)

func (v *TermView) Render(roots []*tree.Node) {
	v.roots = roots
	v.visible = nil
	v.nodeUpdates = 0
}

func (v *TermView) UpdateNode(*tree.Node) { v.nodeUpdates++ }

func (v *TermView) UpdateBadges(visible []*tree.Node) {
	v.visible = append(v.visible[:0], visible...)
}

func (v *TermView) UpdateExtent(cells int) { v.extent = cells }

func (v *TermView) SetSelected(id string, selected bool) {
	if selected {
		v.selected = id
	} else if v.selected == id {
		v.selected = ""
	}
}

func (v *TermView) SetHovered(id string, hovered bool) {
	if hovered {
		v.hovered = id
	} else if v.hovered == id {
		v.hovered = ""
	}
}

func (v *TermView) SetCurrent(id string) { v.current = id }

func (v *TermView) ShowRootList(show bool) { v.rootListShown = show }

func (v *TermView) ShowNoResults(show bool) { v.noResults = show }

// Rows returns the visible rows in display order.
func (v *TermView) Rows() []*tree.Node { return v.visible }

// Extent returns the widest visible row in cells.
func (v *TermView) Extent() int { return v.extent }

// SelectedID returns the highlighted row id.
func (v *TermView) SelectedID() string { return v.selected }

// HoveredID returns the row under the mouse.
func (v *TermView) HoveredID() string { return v.hovered }

// CurrentID returns the row marked current.
func (v *TermView) CurrentID() string { return v.current }

// RootListShown reports whether the tree list is displayed.
func (v *TermView) RootListShown() bool { return v.rootListShown }

// NoResultsShown reports whether the empty-search notice is displayed.
func (v *TermView) NoResultsShown() bool { return v.noResults }

// RowIndex returns the display index of id, or -1.
func (v *TermView) RowIndex(id string) int {
	for i, n := range v.visible {
		if n.ID == id {
			return i
		}
	}
	return -1
}
