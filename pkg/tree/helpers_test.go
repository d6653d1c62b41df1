package tree

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// recordingView keeps the latest state pushed by the tree.
type recordingView struct {
	renders     int
	updates     map[string]int
	badges      []string
	extent      int
	selected    map[string]bool
	hovered     map[string]bool
	current     string
	rootList    bool
	noResults   bool
	badgeCalls  int
	extentCalls int
}

func newRecordingView() *recordingView {
	return &recordingView{
		updates:  make(map[string]int),
		selected: make(map[string]bool),
		hovered:  make(map[string]bool),
	}
}

func (v *recordingView) Render(roots []*Node) { v.renders++ }
func (v *recordingView) UpdateNode(n *Node)   { v.updates[n.ID]++ }

func (v *recordingView) UpdateBadges(visible []*Node) {
	v.badgeCalls++
	v.badges = v.badges[:0]
	for _, n := range visible {
		v.badges = append(v.badges, n.Coverage)
	}
}

func (v *recordingView) UpdateExtent(cells int) {
	v.extentCalls++
	v.extent = cells
}

func (v *recordingView) SetSelected(id string, on bool) { v.selected[id] = on }
func (v *recordingView) SetHovered(id string, on bool)  { v.hovered[id] = on }
func (v *recordingView) SetCurrent(id string)           { v.current = id }
func (v *recordingView) ShowRootList(show bool)         { v.rootList = show }
func (v *recordingView) ShowNoResults(show bool)        { v.noResults = show }

// sampleNodes builds:
//
//	net
//	  net.finmath
//	    net.finmath.functions
//	      net.finmath.functions.Barrier
//	      net.finmath.functions.Normal
//	    net.finmath.time
//	      net.finmath.time.Schedule
//	org
//	  org.util
//	    org.util.Strings
func sampleNodes() []*model.Node {
	return []*model.Node{
		{ID: "net", Text: "net", Children: []*model.Node{
			{ID: "net.finmath", Text: "finmath", Href: "net/finmath/index.html", Coverage: "71%", Children: []*model.Node{
				{ID: "net.finmath.functions", Text: "functions", Coverage: "64%", Children: []*model.Node{
					{ID: "net.finmath.functions.Barrier", Text: "<b>Barrier</b>", Href: "Barrier.html", Coverage: "80%"},
					{ID: "net.finmath.functions.Normal", Text: "Normal", Href: "Normal.html", Coverage: "48%"},
				}},
				{ID: "net.finmath.time", Text: "time", Children: []*model.Node{
					{ID: "net.finmath.time.Schedule", Text: "Schedule", Href: "Schedule.html", Coverage: "90%"},
				}},
			}},
		}},
		{ID: "org", Text: "org", Children: []*model.Node{
			{ID: "org.util", Text: "util", Children: []*model.Node{
				{ID: "org.util.Strings", Text: "Strings", Href: "Strings.html", Coverage: "12%"},
			}},
		}},
	}
}

func newSampleTree(t *testing.T, current string) (*Tree, *recordingView) {
	t.Helper()
	v := newRecordingView()
	tr, err := New(Config{
		Nodes:         sampleNodes(),
		CurrentNodeID: current,
		URLPrefix:     "../",
		View:          v,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr, v
}

func assertVisible(t *testing.T, tr *Tree, want ...string) {
	t.Helper()
	got := tr.VisibleIDs()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
}
