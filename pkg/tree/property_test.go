package tree

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// genNodes draws a random forest whose ids follow the dotted-path scheme.
func genNodes(t *rapid.T) ([]*model.Node, []string) {
	count := rapid.IntRange(1, 24).Draw(t, "count")
	labels := []string{"util", "io", "Map", "Set", "List", "net", "core", "Tree"}

	var roots []*model.Node
	var all []*model.Node
	var ids []string
	for i := 0; i < count; i++ {
		n := &model.Node{
			Text:     rapid.SampledFrom(labels).Draw(t, "label"),
			Coverage: fmt.Sprintf("%d%%", i),
		}
		if rapid.Bool().Draw(t, "link") {
			n.Href = fmt.Sprintf("n%d.html", i)
		}
		parent := rapid.IntRange(-1, len(all)-1).Draw(t, "parent")
		if parent < 0 {
			n.ID = fmt.Sprintf("n%d", i)
			roots = append(roots, n)
		} else {
			p := all[parent]
			n.ID = fmt.Sprintf("%s.n%d", p.ID, i)
			p.Children = append(p.Children, n)
		}
		all = append(all, n)
		ids = append(ids, n.ID)
	}
	return roots, ids
}

// expectedVisible computes visibility straight from the recursive rule.
func expectedVisible(tr *Tree) []string {
	if !tr.RootListShown() {
		return nil
	}
	var want []string
	tr.Iterate(func(n, _ *Node) bool {
		visible := !n.IsHiddenBySearch
		for p := tr.Parent(n); visible && p != nil; p = tr.Parent(p) {
			visible = p.IsOpen && !p.IsHiddenBySearch
		}
		if visible {
			want = append(want, n.ID)
		}
		return true
	})
	return want
}

func checkInvariants(t *rapid.T, tr *Tree, v *recordingView, ids []string) {
	if tr.Len() != len(ids) {
		t.Fatalf("Len = %d, want %d", tr.Len(), len(ids))
	}
	keys := make(map[string]bool)
	for _, id := range ids {
		n := tr.Node(id)
		if n == nil || n.ID != id {
			t.Fatalf("index lost %q", id)
		}
		if keys[tr.DOMKey(id)] {
			t.Fatalf("DOM key %q reused", tr.DOMKey(id))
		}
		keys[tr.DOMKey(id)] = true
		if !n.HasChildren() && n.IsOpen {
			t.Fatalf("leaf %q is open", id)
		}
		if p := tr.Parent(n); p != nil && n.Depth != p.Depth+1 {
			t.Fatalf("%q depth %d under depth %d", id, n.Depth, p.Depth)
		}
	}

	got := tr.VisibleIDs()
	want := expectedVisible(tr)
	if len(got) != 0 || len(want) != 0 {
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}
	for _, id := range ids {
		in := false
		for _, w := range want {
			in = in || w == id
		}
		if tr.IsVisible(id) != in {
			t.Fatalf("IsVisible(%q) = %v, want %v", id, tr.IsVisible(id), in)
		}
	}

	if len(v.badges) != len(got) {
		t.Fatalf("badge slots = %d, visible rows = %d", len(v.badges), len(got))
	}
	if v.extent != tr.Extent() {
		t.Fatalf("view extent = %d, tree extent = %d", v.extent, tr.Extent())
	}
}

func TestTreeStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes, ids := genNodes(t)
		current := ""
		if rapid.Bool().Draw(t, "hasCurrent") {
			current = rapid.SampledFrom(ids).Draw(t, "current")
		}
		v := newRecordingView()
		tr, err := New(Config{Nodes: nodes, CurrentNodeID: current, View: v})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		initial := tr.VisibleIDs()
		checkInvariants(t, tr, v, ids)

		queries := []string{"", "u", "Map", "Tree", "n1", "n0.", ".n2", "zzz", "et"}
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			switch rapid.IntRange(0, 8).Draw(t, "op") {
			case 0:
				tr.OpenNode(id)
			case 1:
				tr.CloseNode(id)
			case 2:
				tr.ToggleNode(id)
			case 3:
				tr.OpenAncestors(id, rapid.Bool().Draw(t, "self"))
			case 4:
				tr.OpenAll()
			case 5:
				tr.CloseAll()
			case 6:
				tr.HandleKey(Key(rapid.IntRange(0, 5).Draw(t, "key")))
				if sel, idx, ok := tr.Selection(); ok {
					visible := tr.VisibleIDs()
					if idx < 0 || idx >= len(visible) || visible[idx] != sel {
						t.Fatalf("selection %q at %d not in visible list %v", sel, idx, visible)
					}
				}
			case 7:
				res := tr.Search(rapid.SampledFrom(queries).Draw(t, "query"))
				if res.Total < len(res.Results) {
					t.Fatalf("Total %d below result count %d", res.Total, len(res.Results))
				}
				if res.Query != "" && res.Total == 0 && tr.RootListShown() {
					t.Fatal("no-match search left the root list shown")
				}
			case 8:
				tr.HandleEvent(Event(rapid.IntRange(0, 3).Draw(t, "event")), id)
			}
			checkInvariants(t, tr, v, ids)
		}

		tr.Search("")
		tr.Iterate(func(n, _ *Node) bool {
			if n.IsHiddenBySearch {
				t.Fatalf("%q still hidden after reset", n.ID)
			}
			return true
		})
		if got := tr.VisibleIDs(); !reflect.DeepEqual(got, initial) {
			t.Fatalf("visible after reset = %v, want initial %v", got, initial)
		}
	})
}
