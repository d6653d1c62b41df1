package ui

import (
	"sort"

	"github.com/vanderheijden86/covtree/pkg/tree"
)

// openPackages lists the open packages of t, sorted. Reloads carry it over to
// the rebuilt tree; nothing outlives the process.
func openPackages(t *tree.Tree) []string {
	var open []string
	t.Iterate(func(n, _ *tree.Node) bool {
		if n.HasChildren() && n.IsOpen {
			open = append(open, n.ID)
		}
		return true
	})
	sort.Strings(open)
	return open
}

// reopen opens ids in t and reveals the current node again. Ids no longer in
// the tree are ignored.
func reopen(t *tree.Tree, ids []string) {
	for _, id := range ids {
		t.OpenNode(id)
	}
	if cur := t.CurrentID(); cur != "" {
		t.OpenAncestors(cur, true)
	}
}
