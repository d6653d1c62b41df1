package tree

import (
	"testing"

	"github.com/vanderheijden86/covtree/pkg/model"
)

func newFlatTree(t *testing.T, v View, ids ...string) *Tree {
	t.Helper()
	nodes := make([]*model.Node, len(ids))
	for i, id := range ids {
		nodes[i] = &model.Node{ID: id, Text: id, Href: id + ".html"}
	}
	tr, err := New(Config{Nodes: nodes, View: v})
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func selectedID(tr *Tree) string {
	id, _, _ := tr.Selection()
	return id
}

func TestKeyboardDownWraps(t *testing.T) {
	tr := newFlatTree(t, nil, "p", "q", "r")

	want := []string{"p", "q", "r", "p"}
	for i, w := range want {
		if !tr.HandleKey(KeyDown) {
			t.Fatal("down should be handled")
		}
		if got := selectedID(tr); got != w {
			t.Errorf("down #%d selected %q, want %q", i+1, got, w)
		}
	}
}

func TestKeyboardUpWraps(t *testing.T) {
	tr := newFlatTree(t, nil, "p", "q", "r")

	want := []string{"r", "q", "p", "r"}
	for i, w := range want {
		tr.HandleKey(KeyUp)
		if got := selectedID(tr); got != w {
			t.Errorf("up #%d selected %q, want %q", i+1, got, w)
		}
	}
}

func TestKeyboardHighlightMoves(t *testing.T) {
	v := newRecordingView()
	tr := newFlatTree(t, v, "p", "q", "r")

	tr.HandleKey(KeyDown)
	tr.HandleKey(KeyDown)

	if v.selected["p"] || !v.selected["q"] {
		t.Errorf("highlight = %v, want only q", v.selected)
	}
	if _, idx, ok := tr.Selection(); !ok || idx != 1 {
		t.Errorf("selection index = %d, want 1", idx)
	}
}

func TestKeyboardEmptyTree(t *testing.T) {
	tr, err := New(Config{Nodes: []*model.Node{}})
	if err != nil {
		t.Fatal(err)
	}
	tr.HandleKey(KeyDown)
	tr.HandleKey(KeyUp)
	if _, _, ok := tr.Selection(); ok {
		t.Error("nothing to select in an empty tree")
	}
}

func TestKeyboardRightLeft(t *testing.T) {
	tr, v := newSampleTree(t, "")
	tr.HandleKey(KeyDown) // net
	calls := v.badgeCalls

	tr.HandleKey(KeyRight)
	if !tr.Node("net").IsOpen {
		t.Fatal("right should open the selected node")
	}
	if v.badgeCalls == calls {
		t.Error("right should refresh the badge strip")
	}
	assertVisible(t, tr, "net", "net.finmath", "org")

	tr.HandleKey(KeyLeft)
	if tr.Node("net").IsOpen {
		t.Fatal("left should close the selected node")
	}
	assertVisible(t, tr, "net", "org")
}

func TestKeyboardRightLeftWithoutSelection(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	if !tr.HandleKey(KeyRight) || !tr.HandleKey(KeyLeft) {
		t.Error("arrow keys are handled even without a selection")
	}
	assertVisible(t, tr, "net", "org")
}

func TestKeyboardEnterNavigates(t *testing.T) {
	tr, _ := newSampleTree(t, "org.util.Strings")

	tr.Select("org.util.Strings")
	tr.HandleKey(KeyEnter)
	if got := tr.LastNavigation(); got != "../Strings.html" {
		t.Errorf("navigated to %q, want ../Strings.html", got)
	}
}

func TestKeyboardEnterOnPlainLabel(t *testing.T) {
	var urls []string
	tr, err := New(Config{
		Nodes:     sampleNodes(),
		Navigator: NavigatorFunc(func(url string) { urls = append(urls, url) }),
	})
	if err != nil {
		t.Fatal(err)
	}

	tr.HandleKey(KeyDown) // net has no href
	tr.HandleKey(KeyEnter)
	if len(urls) != 0 {
		t.Errorf("plain label navigated to %v", urls)
	}

	tr.HandleKey(KeyEnter) // still nothing
	tr.ResetSelection()
	tr.HandleKey(KeyEnter)
	if len(urls) != 0 {
		t.Errorf("enter without selection navigated to %v", urls)
	}
}

func TestKeyboardDropsStaleSelection(t *testing.T) {
	tr, v := newSampleTree(t, "org.util")
	if !tr.Select("org.util.Strings") {
		t.Fatal("Strings should be selectable")
	}

	tr.CloseNode("org")
	tr.HandleKey(KeyDown)

	// The hidden selection is dropped first, so down starts from the top.
	if got := selectedID(tr); got != "net" {
		t.Errorf("selected %q, want net", got)
	}
	if v.selected["org.util.Strings"] {
		t.Error("stale highlight should be cleared")
	}
}

func TestKeyboardTracksShiftedIndex(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	tr.Select("org") // index 1

	tr.OpenNode("net") // rows appear above org
	tr.HandleKey(KeyDown)

	// org now sits at index 2; down moves past it, wrapping to net.
	if got := selectedID(tr); got != "net" {
		t.Errorf("selected %q, want net", got)
	}
}

func TestKeyboardAfterSearch(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	tr.Select("net")

	tr.Search("util")
	tr.HandleKey(KeyDown)

	if got := selectedID(tr); got != "org" {
		t.Errorf("selected %q, want org", got)
	}
}

func TestKeyboardIgnoresOtherKeys(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	if tr.HandleKey(KeyNone) {
		t.Error("KeyNone should not be handled")
	}
	if tr.HandleKey(Key(99)) {
		t.Error("unknown key should not be handled")
	}
}

func TestResetSelection(t *testing.T) {
	v := newRecordingView()
	tr := newFlatTree(t, v, "p", "q")
	tr.HandleKey(KeyDown)

	tr.ResetSelection()

	if _, idx, ok := tr.Selection(); ok || idx != -1 {
		t.Errorf("selection survived reset: %d", idx)
	}
	if v.selected["p"] {
		t.Error("highlight should be cleared")
	}
	tr.ResetSelection()
}

func TestSelectInvisible(t *testing.T) {
	tr, _ := newSampleTree(t, "")
	if tr.Select("org.util") {
		t.Error("cannot select a row inside a closed package")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"ArrowUp", KeyUp},
		{"up", KeyUp},
		{"ArrowDown", KeyDown},
		{"ArrowLeft", KeyLeft},
		{"right", KeyRight},
		{"Enter", KeyEnter},
		{"Tab", KeyNone},
		{"", KeyNone},
	}
	for _, tt := range tests {
		if got := ParseKey(tt.name); got != tt.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		code int
		want Key
	}{
		{38, KeyUp},
		{40, KeyDown},
		{37, KeyLeft},
		{39, KeyRight},
		{13, KeyEnter},
		{9, KeyNone},
	}
	for _, tt := range tests {
		if got := KeyCode(tt.code); got != tt.want {
			t.Errorf("KeyCode(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
