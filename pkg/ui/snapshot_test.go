package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/covtree/pkg/tree"
)

func newSnapshotTree(t *testing.T, current string) *tree.Tree {
	t.Helper()
	tr, err := tree.New(tree.Config{Nodes: sampleNodes(), CurrentNodeID: current})
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	return tr
}

func TestOpenPackagesCarryOver(t *testing.T) {
	tr := newSnapshotTree(t, "")
	tr.OpenNode("org")
	tr.OpenNode("net")
	tr.OpenNode("org.util")

	open := openPackages(tr)
	if strings.Join(open, ",") != "net,org,org.util" {
		t.Fatalf("open = %v", open)
	}

	fresh := newSnapshotTree(t, "")
	reopen(fresh, open)
	want := []string{"net", "net.finmath", "org", "org.util", "org.util.Strings"}
	if strings.Join(fresh.VisibleIDs(), ",") != strings.Join(want, ",") {
		t.Errorf("visible = %v, want %v", fresh.VisibleIDs(), want)
	}
}

func TestReopenIgnoresUnknownAndRevealsCurrent(t *testing.T) {
	tr := newSnapshotTree(t, "net.finmath")
	tr.CloseAll()

	reopen(tr, []string{"gone", "org"})
	if !tr.IsVisible("net.finmath") {
		t.Error("current node should be revealed again")
	}
	if !tr.IsVisible("org.util") {
		t.Error("org should be open")
	}
}
