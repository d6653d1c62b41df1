package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/covtree/pkg/report"
	"github.com/vanderheijden86/covtree/pkg/tree"
)

func TestTermViewTracksTree(t *testing.T) {
	v := NewTermView()
	tr, err := tree.New(tree.Config{
		Nodes:         sampleNodes(),
		CurrentNodeID: "org.util",
		View:          v,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := len(v.Rows()); got != 4 {
		t.Errorf("rows = %d, want 4 (net, org, util, Strings)", got)
	}
	if v.CurrentID() != "org.util" {
		t.Errorf("current = %q", v.CurrentID())
	}
	if v.Extent() != tr.Extent() {
		t.Errorf("extent = %d, tree says %d", v.Extent(), tr.Extent())
	}
	if !v.RootListShown() || v.NoResultsShown() {
		t.Error("fresh view should show the root list")
	}

	tr.HandleKey(tree.KeyDown)
	if v.SelectedID() != "net" {
		t.Errorf("selected = %q", v.SelectedID())
	}
	tr.HandleKey(tree.KeyDown)
	if v.SelectedID() != "org" {
		t.Errorf("selected after second down = %q", v.SelectedID())
	}

	tr.HandleEvent(tree.EventNodeHover, "net")
	tr.HandleEvent(tree.EventNodeHover, "org")
	if v.HoveredID() != "org" {
		t.Errorf("hovered = %q", v.HoveredID())
	}
	tr.HandleEvent(tree.EventNodeUnhover, "org")
	if v.HoveredID() != "" {
		t.Errorf("hovered after unhover = %q", v.HoveredID())
	}

	tr.Search("nothing-matches")
	if v.RootListShown() || !v.NoResultsShown() || len(v.Rows()) != 0 {
		t.Errorf("zero matches: rootList=%v noResults=%v rows=%d", v.RootListShown(), v.NoResultsShown(), len(v.Rows()))
	}
	if v.RowIndex("net") != -1 {
		t.Error("RowIndex found a hidden row")
	}
}

func TestTermViewCountsNodeUpdates(t *testing.T) {
	v := NewTermView()
	tr, err := tree.New(tree.Config{Nodes: sampleNodes(), View: v})
	if err != nil {
		t.Fatal(err)
	}
	tr.OpenNode("net")
	tr.OpenNode("net")
	if v.nodeUpdates != 1 {
		t.Errorf("node updates = %d, want 1", v.nodeUpdates)
	}
	tr.Render()
	if v.nodeUpdates != 0 {
		t.Errorf("node updates after render = %d", v.nodeUpdates)
	}
}

func TestThemeBandColor(t *testing.T) {
	th := DefaultTheme(lipgloss.NewRenderer(nil))
	tests := map[string]lipgloss.AdaptiveColor{
		report.BandExcellent: th.Excellent,
		report.BandGood:      th.Good,
		report.BandModerate:  th.Moderate,
		report.BandPoor:      th.Poor,
		report.BandCritical:  th.Critical,
		report.BandUnknown:   th.Subtext,
	}
	for band, want := range tests {
		if got := th.BandColor(band); got != want {
			t.Errorf("BandColor(%s) = %v, want %v", band, got, want)
		}
	}
}

func TestThemeNodeIcon(t *testing.T) {
	th := TestTheme()
	if icon, _ := th.NodeIcon(true); icon != "P" {
		t.Errorf("package icon = %q", icon)
	}
	if icon, _ := th.NodeIcon(false); icon != "C" {
		t.Errorf("class icon = %q", icon)
	}
}
