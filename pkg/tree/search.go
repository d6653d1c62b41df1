package tree

import (
	"strings"
	"time"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/metrics"
)

// SearchResult summarizes one Search call.
type SearchResult struct {
	Query   string
	Total   int      // Every matching node, folded or not
	Results []string // Top-level result ids whose paths were opened
}

// Search filters the tree by query.
//
// An empty query resets: everything closes, search flags clear, and the path
// to the current node opens again. A query containing "." matches against
// node ids, any other query against display text; both are case-sensitive
// substring matches.
//
// Matches are collected in pre-order. A match below an already collected
// result, or sharing its id prefix (the part before the last "."), is folded
// into it: it counts toward Total but does not open its own path.
func (t *Tree) Search(query string) SearchResult {
	defer metrics.Timer(metrics.TreeSearch)()
	start := time.Now()
	defer func() { debug.LogTiming("tree.Search("+query+")", time.Since(start)) }()

	if query == "" {
		t.resetSearch()
		t.lastSearch = SearchResult{}
		t.refresh()
		return t.lastSearch
	}

	matchField := func(n *Node) string { return n.Text }
	if strings.Contains(query, ".") {
		matchField = func(n *Node) string { return n.ID }
	}

	result := SearchResult{Query: query}
	// keep holds matches and all their ancestors: nodes whose subtree has a match.
	keep := make(map[string]bool)
	t.Iterate(func(n, _ *Node) bool {
		matched := strings.Contains(matchField(n), query)
		t.setMatch(n, matched)
		if !matched {
			return true
		}
		result.Total++
		for p := n; p != nil && !keep[p.ID]; p = t.Parent(p) {
			keep[p.ID] = true
		}
		if !t.foldsInto(n, result.Results) {
			result.Results = append(result.Results, n.ID)
		}
		return true
	})

	if result.Total == 0 {
		t.clearHidden()
		t.showResults(false)
		t.lastSearch = result
		t.refresh()
		return result
	}

	t.showResults(true)
	for _, id := range result.Results {
		t.openAncestors(t.byID[id], false)
	}
	t.clearHidden()
	// Only rows that would otherwise be shown get flagged; collapsed branches
	// stay out of view anyway.
	for _, n := range t.VisibleNodes() {
		if !keep[n.ID] {
			t.setHidden(n, true)
		}
	}

	t.lastSearch = result
	t.refresh()
	return result
}

// LastSearch returns the result of the most recent Search.
func (t *Tree) LastSearch() SearchResult { return t.lastSearch }

// IsMatch reports whether the node itself matched the active query.
func (t *Tree) IsMatch(id string) bool {
	n := t.byID[id]
	return n != nil && n.IsSearchMatch
}

// RootListShown reports whether the tree is displayed. A search without
// matches hides it.
func (t *Tree) RootListShown() bool { return t.rootListShown }

// NoResultsShown reports whether the "no results" indicator is displayed.
func (t *Tree) NoResultsShown() bool { return t.noResults }

// foldsInto reports whether a match is covered by an already collected
// result, as a descendant or as a sibling.
func (t *Tree) foldsInto(n *Node, results []string) bool {
	for _, id := range results {
		if t.isDescendant(n, id) || IsSibling(n.ID, id) {
			return true
		}
	}
	return false
}

// ParentPrefix returns the part of id before its last ".". Root-level ids
// have no dot and yield "", which makes all of them siblings of each other.
func ParentPrefix(id string) string {
	i := strings.LastIndexByte(id, '.')
	if i < 0 {
		return ""
	}
	return id[:i]
}

// IsSibling reports whether two ids share the same parent prefix.
func IsSibling(a, b string) bool {
	return ParentPrefix(a) == ParentPrefix(b)
}

func (t *Tree) resetSearch() {
	t.Iterate(func(n, _ *Node) bool {
		t.setOpen(n, false)
		t.setMatch(n, false)
		return true
	})
	t.clearHidden()
	t.openAncestors(t.byID[t.currentID], true)
	t.showResults(true)
}

// showResults toggles between the root list and the "no results" indicator.
func (t *Tree) showResults(found bool) {
	t.rootListShown = found
	t.noResults = !found
	t.view.ShowRootList(found)
	t.view.ShowNoResults(!found)
}

func (t *Tree) clearHidden() {
	t.Iterate(func(n, _ *Node) bool {
		t.setHidden(n, false)
		return true
	})
}

func (t *Tree) setHidden(n *Node, hidden bool) {
	if n.IsHiddenBySearch == hidden {
		return
	}
	n.IsHiddenBySearch = hidden
	t.view.UpdateNode(n)
}

func (t *Tree) setMatch(n *Node, match bool) {
	if n.IsSearchMatch == match {
		return
	}
	n.IsSearchMatch = match
	t.view.UpdateNode(n)
}
