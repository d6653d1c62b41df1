package tree

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// VisitFunc is called for each node of a pre-order walk. Returning false
// skips the node's children.
type VisitFunc func(n, parent *Node) bool

// DOMKey derives the DOM identifier of a node id by replacing every "." with
// "-". Ids are dot-separated alphanumeric segments, so the mapping is
// injective.
func DOMKey(id string) string {
	return strings.ReplaceAll(id, ".", "-")
}

// prepare walks the host's nodes once in pre-order, building the owned node
// tree with parent ids and depths, and filling both indexes. Every node
// starts open; Render closes them.
func (t *Tree) prepare(sources []*model.Node) error {
	t.byID = make(map[string]*Node)
	t.domKeyByID = make(map[string]string)

	roots, err := t.buildNodes(sources, nil)
	if err != nil {
		return err
	}
	t.roots = roots
	return nil
}

func (t *Tree) buildNodes(sources []*model.Node, parent *Node) ([]*Node, error) {
	nodes := make([]*Node, 0, len(sources))
	for _, src := range sources {
		if src == nil {
			continue
		}
		if src.ID == "" {
			if parent != nil {
				return nil, fmt.Errorf("%w (child of %q)", ErrEmptyID, parent.ID)
			}
			return nil, ErrEmptyID
		}
		// A node reachable twice (including a cycle) surfaces here as well.
		if _, dup := t.byID[src.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, src.ID)
		}

		n := &Node{
			ID:       src.ID,
			DOMKey:   DOMKey(src.ID),
			Text:     src.Text,
			Href:     src.Href,
			Coverage: src.Coverage,
			IsOpen:   true,
			source:   src,
		}
		if parent != nil {
			n.ParentID = parent.ID
			n.Depth = parent.Depth + 1
		}
		t.byID[n.ID] = n
		t.domKeyByID[n.ID] = n.DOMKey

		children, err := t.buildNodes(src.Children, n)
		if err != nil {
			return nil, err
		}
		n.Children = children
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Iterate walks the whole tree in pre-order.
func (t *Tree) Iterate(visit VisitFunc) {
	t.IterateFrom(t.roots, nil, visit)
}

// IterateFrom walks nodes (whose parent is parent) in pre-order.
func (t *Tree) IterateFrom(nodes []*Node, parent *Node, visit VisitFunc) {
	for _, n := range nodes {
		if !visit(n, parent) {
			continue
		}
		t.IterateFrom(n.Children, n, visit)
	}
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id string) *Node {
	return t.byID[id]
}

// DOMKey returns the indexed DOM key of id, or "" for unknown ids.
func (t *Tree) DOMKey(id string) string {
	return t.domKeyByID[id]
}

// Parent returns the parent of n, or nil for roots.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil || n.ParentID == "" {
		return nil
	}
	return t.byID[n.ParentID]
}

// Roots returns the root nodes in order.
func (t *Tree) Roots() []*Node { return t.roots }

// Len returns the number of indexed nodes.
func (t *Tree) Len() int { return len(t.byID) }

// isDescendant reports whether n sits strictly below the node ancestorID.
func (t *Tree) isDescendant(n *Node, ancestorID string) bool {
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if p.ID == ancestorID {
			return true
		}
	}
	return false
}
