package tree

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/covtree/pkg/model"
)

func TestSearchByText(t *testing.T) {
	tr, v := newSampleTree(t, "")

	res := tr.Search("finmath")

	if res.Total != 1 || !reflect.DeepEqual(res.Results, []string{"net.finmath"}) {
		t.Fatalf("result = %+v", res)
	}
	assertVisible(t, tr, "net", "net.finmath")
	if !tr.Node("org").IsHiddenBySearch {
		t.Error("org has no match and should be hidden")
	}
	if tr.Node("net.finmath").IsOpen {
		t.Error("a match itself stays closed; only its ancestors open")
	}
	if !tr.IsMatch("net.finmath") || tr.IsMatch("net") {
		t.Error("only net.finmath should be flagged as a match")
	}
	if len(v.badges) != 2 {
		t.Errorf("badge slots = %d, want 2", len(v.badges))
	}
}

func TestSearchTextIgnoresIDs(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	// "net" is a prefix of every id below it, but only one label contains it.
	res := tr.Search("net")
	if res.Total != 1 {
		t.Errorf("Total = %d, want 1", res.Total)
	}
}

func TestSearchIsCaseSensitive(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	if res := tr.Search("strings"); res.Total != 0 {
		t.Errorf("lowercase query matched %d nodes", res.Total)
	}
	if res := tr.Search("Strings"); res.Total != 1 {
		t.Errorf("Total = %d, want 1", res.Total)
	}
}

func TestSearchTextMatchesMarkupLabel(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	// Text is matched as supplied, markup included.
	if res := tr.Search("<b>"); res.Total != 1 {
		t.Errorf("Total = %d, want 1", res.Total)
	}
}

func TestSearchDottedQueryMatchesIDs(t *testing.T) {
	tr, _ := newSampleTree(t, "")

	res := tr.Search("functions.")

	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if !reflect.DeepEqual(res.Results, []string{"net.finmath.functions.Barrier"}) {
		t.Errorf("Results = %v", res.Results)
	}
	assertVisible(t, tr,
		"net",
		"net.finmath",
		"net.finmath.functions",
		"net.finmath.functions.Barrier",
		"net.finmath.functions.Normal",
	)
	if !tr.Node("net.finmath.time").IsHiddenBySearch {
		t.Error("net.finmath.time should be hidden")
	}
}

func TestSearchFoldsDescendants(t *testing.T) {
	tr, err := New(Config{Nodes: []*model.Node{
		{ID: "net", Text: "net", Children: []*model.Node{
			{ID: "net.x", Text: "x", Children: []*model.Node{
				{ID: "net.x.Y", Text: "xY"},
				{ID: "net.x.Z", Text: "xZ"},
			}},
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	res := tr.Search("x")

	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	if !reflect.DeepEqual(res.Results, []string{"net.x"}) {
		t.Errorf("Results = %v, want [net.x]", res.Results)
	}
}

func TestSearchFoldsSiblings(t *testing.T) {
	tr, err := New(Config{Nodes: []*model.Node{
		{ID: "a", Text: "a", Children: []*model.Node{
			{ID: "a.b", Text: "b", Children: []*model.Node{
				{ID: "a.b.M", Text: "M"},
				{ID: "a.b.N", Text: "N"},
			}},
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	res := tr.Search("a.b.")

	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if !reflect.DeepEqual(res.Results, []string{"a.b.M"}) {
		t.Errorf("Results = %v, want [a.b.M]", res.Results)
	}
	assertVisible(t, tr, "a", "a.b", "a.b.M", "a.b.N")
}

func TestSearchRootIDsAreSiblings(t *testing.T) {
	tr, err := New(Config{Nodes: []*model.Node{
		{ID: "alpha", Text: "alpha"},
		{ID: "alphabet", Text: "alphabet"},
		{ID: "beta", Text: "beta"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	res := tr.Search("alp")

	if res.Total != 2 || !reflect.DeepEqual(res.Results, []string{"alpha"}) {
		t.Errorf("result = %+v", res)
	}
	assertVisible(t, tr, "alpha", "alphabet")
}

func TestSearchSeparateBranchesAreSeparateResults(t *testing.T) {
	tr, _ := newSampleTree(t, "")

	res := tr.Search("S")

	// Schedule and Strings live under different parents.
	want := []string{"net.finmath.time.Schedule", "org.util.Strings"}
	if res.Total != 2 || !reflect.DeepEqual(res.Results, want) {
		t.Fatalf("result = %+v", res)
	}
	assertVisible(t, tr,
		"net",
		"net.finmath",
		"net.finmath.time",
		"net.finmath.time.Schedule",
		"org",
		"org.util",
		"org.util.Strings",
	)
}

func TestSearchNoMatch(t *testing.T) {
	tr, v := newSampleTree(t, "org.util.Strings")

	res := tr.Search("zzz")

	if res.Total != 0 || len(res.Results) != 0 {
		t.Errorf("result = %+v", res)
	}
	if tr.RootListShown() || !tr.NoResultsShown() {
		t.Error("no-match search should hide the root list and show the indicator")
	}
	if v.rootList || !v.noResults {
		t.Error("view not switched to the no-results state")
	}
	assertVisible(t, tr)
	if tr.IsVisible("net") {
		t.Error("no node should be visible")
	}
	if len(v.badges) != 0 {
		t.Errorf("badge slots = %d, want 0", len(v.badges))
	}
}

func TestSearchAfterNoMatchShowsTreeAgain(t *testing.T) {
	tr, v := newSampleTree(t, "")
	tr.Search("zzz")
	tr.Search("util")

	if !tr.RootListShown() || tr.NoResultsShown() || !v.rootList || v.noResults {
		t.Error("a matching search should show the root list again")
	}
	assertVisible(t, tr, "org", "org.util")
}

func TestSearchEmptyResets(t *testing.T) {
	current := "net.finmath.functions.Barrier"
	tr, _ := newSampleTree(t, current)
	initial := tr.VisibleIDs()

	tr.OpenAll()
	tr.Search("Strings")
	res := tr.Search("")

	if res.Total != 0 || res.Query != "" {
		t.Errorf("reset result = %+v", res)
	}
	tr.Iterate(func(n, _ *Node) bool {
		if n.IsHiddenBySearch || n.IsSearchMatch {
			t.Errorf("%q keeps search flags after reset", n.ID)
		}
		return true
	})
	if got := tr.VisibleIDs(); !reflect.DeepEqual(got, initial) {
		t.Errorf("visible after reset = %v, want %v", got, initial)
	}
}

func TestSearchEmptyResetsAfterNoMatch(t *testing.T) {
	tr, v := newSampleTree(t, "")
	tr.Search("zzz")
	tr.Search("")

	if !tr.RootListShown() || tr.NoResultsShown() || !v.rootList || v.noResults {
		t.Error("reset should show the root list")
	}
	assertVisible(t, tr, "net", "org")
}

func TestLastSearch(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	tr.Search("util")
	if got := tr.LastSearch(); got.Query != "util" || got.Total != 1 {
		t.Errorf("LastSearch = %+v", got)
	}
}

func TestParentPrefix(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"net.finmath.functions", "net.finmath"},
		{"net.x", "net"},
		{"root", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParentPrefix(tt.id); got != tt.want {
			t.Errorf("ParentPrefix(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	if !IsSibling("a.b.M", "a.b.N") {
		t.Error("a.b.M and a.b.N should be siblings")
	}
	if IsSibling("a.b.M", "a.c.M") {
		t.Error("a.b.M and a.c.M should not be siblings")
	}
	if !IsSibling("alpha", "beta") {
		t.Error("root ids should be siblings")
	}
}
