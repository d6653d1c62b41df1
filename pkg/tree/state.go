package tree

import (
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// Row layout in cells: two per depth level, then "▸ " and the icon plus a
// space before the label.
const (
	IndentCells = 2
	arrowCells  = 2
	iconCells   = 2
)

// Render force-closes every node and hands the whole tree to the view. The
// keyboard selection does not survive a fresh render.
func (t *Tree) Render() {
	t.Iterate(func(n, _ *Node) bool {
		n.IsOpen = false
		return true
	})
	t.view.Render(t.roots)
	t.ResetSelection()
	t.refresh()
}

// RenderBadges recomputes the badge strip for the current visible rows.
func (t *Tree) RenderBadges() {
	t.view.UpdateBadges(t.VisibleNodes())
}

// refresh brings the badge strip and the scrollable extent in line with the
// visible rows. Called after every change to open or hidden state.
func (t *Tree) refresh() {
	t.RenderBadges()
	t.view.UpdateExtent(t.Extent())
}

// VisibleNodes returns the visible nodes in pre-order. A node is visible when
// the root list is shown, it is not hidden by search, and it is a root or its
// parent is visible and open.
func (t *Tree) VisibleNodes() []*Node {
	if !t.rootListShown {
		return nil
	}
	var visible []*Node
	t.Iterate(func(n, _ *Node) bool {
		if n.IsHiddenBySearch {
			return false
		}
		visible = append(visible, n)
		return n.IsOpen
	})
	return visible
}

// VisibleIDs returns the ids of VisibleNodes.
func (t *Tree) VisibleIDs() []string {
	visible := t.VisibleNodes()
	ids := make([]string, len(visible))
	for i, n := range visible {
		ids[i] = n.ID
	}
	return ids
}

// IsVisible reports whether the node with the given id is visible.
func (t *Tree) IsVisible(id string) bool {
	n := t.byID[id]
	if n == nil || !t.rootListShown {
		return false
	}
	if n.IsHiddenBySearch {
		return false
	}
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if !p.IsOpen || p.IsHiddenBySearch {
			return false
		}
	}
	return true
}

// OpenNode opens a node. Unknown ids, leaves and open nodes are ignored.
func (t *Tree) OpenNode(id string) {
	if t.setOpen(t.byID[id], true) {
		t.refresh()
	}
}

// CloseNode closes a node. Unknown ids, leaves and closed nodes are ignored.
func (t *Tree) CloseNode(id string) {
	if t.setOpen(t.byID[id], false) {
		t.refresh()
	}
}

// ToggleNode flips a node between open and closed.
func (t *Tree) ToggleNode(id string) {
	n := t.byID[id]
	if n == nil {
		return
	}
	if t.setOpen(n, !n.IsOpen) {
		t.refresh()
	}
}

// OpenAncestors opens every ancestor of id, and id itself when includeSelf
// is set.
func (t *Tree) OpenAncestors(id string, includeSelf bool) {
	if t.openAncestors(t.byID[id], includeSelf) {
		t.refresh()
	}
}

// OpenAll opens every node in the tree.
func (t *Tree) OpenAll() {
	t.setAllOpen(true)
}

// CloseAll closes every node in the tree.
func (t *Tree) CloseAll() {
	t.setAllOpen(false)
}

func (t *Tree) setAllOpen(open bool) {
	changed := false
	t.Iterate(func(n, _ *Node) bool {
		if t.setOpen(n, open) {
			changed = true
		}
		return true
	})
	if changed {
		t.refresh()
	}
}

// setOpen is the single place open state changes. It updates only the
// node's own row and reports whether anything changed.
func (t *Tree) setOpen(n *Node, open bool) bool {
	if n == nil || !n.HasChildren() || n.IsOpen == open {
		return false
	}
	n.IsOpen = open
	t.view.UpdateNode(n)
	return true
}

func (t *Tree) openAncestors(n *Node, includeSelf bool) bool {
	if n == nil {
		return false
	}
	changed := false
	if includeSelf && t.setOpen(n, true) {
		changed = true
	}
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if t.setOpen(p, true) {
			changed = true
		}
	}
	return changed
}

// Extent returns the width in cells of the widest visible row. Hosts use it
// to bound the horizontally scrollable area.
func (t *Tree) Extent() int {
	return extentOf(t.VisibleNodes())
}

// RowWidth returns the width in cells of one row.
func RowWidth(n *Node) int {
	if n == nil {
		return 0
	}
	w := n.Depth*IndentCells + iconCells + runewidth.StringWidth(model.PlainText(n.Text))
	if n.HasChildren() {
		w += arrowCells
	}
	return w
}

func extentOf(visible []*Node) int {
	widest := 0
	for _, n := range visible {
		if w := RowWidth(n); w > widest {
			widest = w
		}
	}
	return widest
}
