package ui

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/model"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

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

func sampleRecords() map[string]*model.ClassCoverage {
	return map[string]*model.ClassCoverage{
		"net.finmath.functions.Barrier": {
			Name:      "Barrier",
			ID:        "net.finmath.functions.Barrier",
			StartLine: 1,
			EndLine:   3,
			Methods:   []model.MethodRange{{StartLine: 1, EndLine: 3}},
			Tests: map[string]model.TestRecord{
				"t1": {Name: "testBarrier", Pass: true, Methods: 1, Statements: 2},
				"t2": {Name: "testEdge", Pass: false, Methods: 1, Statements: 1},
			},
			SrcFileLines: [][]string{{"t1"}, {}, {"t1", "t2"}},
		},
	}
}

func newTestModel(t *testing.T, current string, opts Options) Model {
	t.Helper()
	b := &loader.Bundle{
		Path:    filepath.Join(t.TempDir(), "package-tree.json"),
		Dataset: &model.Dataset{Nodes: sampleNodes(), CurrentNodeID: current},
		Records: sampleRecords(),
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(nil)
	}
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "notty"
	}
	m, err := NewModel(b, opts)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return resize(m, 60, 20)
}

func resize(m Model, w, h int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, runeKey(r))
	}
	return m
}

func rowIDs(m Model) []string {
	var ids []string
	for _, n := range m.TermView().Rows() {
		ids = append(ids, n.ID)
	}
	return ids
}

func assertRows(t *testing.T, m Model, want ...string) {
	t.Helper()
	got := rowIDs(m)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("rows = %v, want %v", got, want)
	}
}

func TestNewModelRevealsCurrent(t *testing.T) {
	m := newTestModel(t, "net.finmath.functions.Barrier", Options{})

	assertRows(t, m,
		"net", "net.finmath", "net.finmath.functions",
		"net.finmath.functions.Barrier", "net.finmath.functions.Normal",
		"net.finmath.time", "org")

	id, idx, ok := m.Tree().Selection()
	if !ok || id != "net.finmath.functions.Barrier" || idx != 3 {
		t.Errorf("selection = %q/%d/%v, want Barrier at 3", id, idx, ok)
	}
	if got := m.TermView().CurrentID(); got != "net.finmath.functions.Barrier" {
		t.Errorf("current = %q", got)
	}
}

func TestNewModelRejectsNilDataset(t *testing.T) {
	if _, err := NewModel(&loader.Bundle{}, Options{}); !errors.Is(err, model.ErrNoNodes) {
		t.Errorf("err = %v, want ErrNoNodes", err)
	}
}

func TestModelKeyboardNavigation(t *testing.T) {
	m := newTestModel(t, "", Options{})
	assertRows(t, m, "net", "org")

	m = send(m, runeKey('j'))
	if id, _, _ := m.Tree().Selection(); id != "net" {
		t.Fatalf("after j selection = %q, want net", id)
	}

	m = send(m, runeKey('l'))
	assertRows(t, m, "net", "net.finmath", "org")

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	if id, _, _ := m.Tree().Selection(); id != "net.finmath" {
		t.Fatalf("after down selection = %q, want net.finmath", id)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.LastOpened(); got != "net/finmath/index.html" {
		t.Errorf("opened = %q", got)
	}
	if status, isErr := m.Status(); status != "Open net/finmath/index.html" || isErr {
		t.Errorf("status = %q (err %v)", status, isErr)
	}

	m = send(m, runeKey('k'), runeKey('h'))
	assertRows(t, m, "net", "org")

	// Up from the first row wraps to the last
	m = send(m, tea.KeyMsg{Type: tea.KeyUp})
	if id, _, _ := m.Tree().Selection(); id != "org" {
		t.Errorf("after wrap selection = %q, want org", id)
	}
}

func TestModelSpaceToggles(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = send(m, runeKey('j'), tea.KeyMsg{Type: tea.KeySpace})
	assertRows(t, m, "net", "net.finmath", "org")
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	assertRows(t, m, "net", "org")
}

func TestModelOpenAllCloseAll(t *testing.T) {
	m := newTestModel(t, "", Options{})

	m = send(m, runeKey('X'))
	if got := len(m.TermView().Rows()); got != 10 {
		t.Errorf("after X rows = %d, want 10", got)
	}

	m = send(m, runeKey('Z'))
	assertRows(t, m, "net", "org")
}

func TestModelSearch(t *testing.T) {
	m := newTestModel(t, "", Options{})

	m = send(m, runeKey('/'))
	m = typeText(m, "Normal")

	if got := m.Tree().LastSearch().Query; got != "Normal" {
		t.Fatalf("query = %q", got)
	}
	if m.TermView().RowIndex("net.finmath.functions.Normal") < 0 {
		t.Errorf("Normal not visible, rows = %v", rowIDs(m))
	}
	if status, _ := m.Status(); status != "1 match" {
		t.Errorf("status = %q", status)
	}

	// Arrow keys move through results while typing
	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	if _, _, ok := m.Tree().Selection(); !ok {
		t.Error("down while searching selected nothing")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Tree().LastSearch().Query; got != "" {
		t.Errorf("query after esc = %q", got)
	}
	assertRows(t, m, "net", "org")
	if status, _ := m.Status(); status != "" {
		t.Errorf("status after esc = %q", status)
	}
}

func TestModelSearchNoResults(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = send(m, runeKey('/'))
	m = typeText(m, "zzz")

	if !m.TermView().NoResultsShown() {
		t.Error("no-results notice not shown")
	}
	if len(m.TermView().Rows()) != 0 {
		t.Errorf("rows = %v, want none", rowIDs(m))
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "No results found") {
		t.Errorf("view missing notice:\n%s", view)
	}

	// Enter leaves the filter in place
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Tree().LastSearch().Query; got != "zzz" {
		t.Errorf("query after enter = %q", got)
	}
}

func TestModelHorizontalScroll(t *testing.T) {
	m := newTestModel(t, "", Options{ShowBadges: true, BadgeWidth: 6})
	m = resize(m, 20, 20)
	m = send(m, runeKey('X'))

	// Widest row is net.finmath.functions: 4 indent + 2 arrow + 2 icon + 9
	if got := m.TermView().Extent(); got != 17 {
		t.Fatalf("extent = %d, want 17", got)
	}

	m = send(m, runeKey('>'), runeKey('>'))
	if got := m.ScrollLeft(); got != 4 {
		t.Errorf("scroll after >> = %d, want 4 (clamped)", got)
	}

	m = send(m, runeKey('<'))
	if got := m.ScrollLeft(); got != 0 {
		t.Errorf("scroll after < = %d, want 0", got)
	}

	// Closing everything shrinks the extent and the scroll range with it
	m = send(m, runeKey('>'), runeKey('Z'))
	if got := m.ScrollLeft(); got != 0 {
		t.Errorf("scroll after Z = %d, want 0", got)
	}
}

func TestModelMouse(t *testing.T) {
	m := newTestModel(t, "", Options{})

	m = send(m, tea.MouseMsg{X: 1, Y: headerRows, Action: tea.MouseActionMotion})
	if got := m.Tree().HoveredID(); got != "net" {
		t.Errorf("hovered = %q, want net", got)
	}
	if got := m.TermView().HoveredID(); got != "net" {
		t.Errorf("view hovered = %q, want net", got)
	}

	m = send(m, tea.MouseMsg{X: 1, Y: headerRows + 10, Action: tea.MouseActionMotion})
	if got := m.Tree().HoveredID(); got != "" {
		t.Errorf("hovered after leaving = %q", got)
	}

	// Arrow column toggles
	m = send(m, tea.MouseMsg{X: 0, Y: headerRows, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assertRows(t, m, "net", "net.finmath", "org")

	// Label activates the link
	m = send(m, tea.MouseMsg{X: 6, Y: headerRows + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := m.LastOpened(); got != "net/finmath/index.html" {
		t.Errorf("opened = %q", got)
	}
	if id, _, _ := m.Tree().Selection(); id != "net.finmath" {
		t.Errorf("click did not select, selection = %q", id)
	}
}

func TestModelDetailPane(t *testing.T) {
	m := newTestModel(t, "net.finmath.functions.Barrier", Options{ShowDetail: true})
	m = resize(m, 100, 30)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.LastOpened(); got != "Barrier.html" {
		t.Errorf("opened = %q", got)
	}

	view := stripANSI(m.View())
	for _, want := range []string{"2 of 3 lines covered", "testBarrier", "testEdge", "1 passed", "1 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelViewRows(t *testing.T) {
	m := newTestModel(t, "net.finmath", Options{ShowBadges: true, BadgeWidth: 6})
	view := stripANSI(m.View())

	for _, want := range []string{"▾ P net", "  ▾ P finmath", "    ▸ P functions", "71.0%", "▸ P org"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = resize(m, 60, 60)

	m = send(m, runeKey('?'))
	view := stripANSI(m.View())
	for _, want := range []string{"excellent", "Navigation"} {
		if !strings.Contains(view, want) {
			t.Errorf("help missing %q:\n%s", want, view)
		}
	}

	// Keys other than close are swallowed while help is up
	m = send(m, runeKey('j'))
	if _, _, ok := m.Tree().Selection(); ok {
		t.Error("j moved the selection under the help overlay")
	}

	m = send(m, runeKey('?'))
	if view := stripANSI(m.View()); !strings.Contains(view, "P net") {
		t.Errorf("tree not back after closing help:\n%s", view)
	}
}

func TestModelCopyWithoutSelection(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = send(m, runeKey('y'))
	if status, isErr := m.Status(); status != "Nothing selected" || !isErr {
		t.Errorf("status = %q (err %v)", status, isErr)
	}
}

func TestModelReload(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = send(m, runeKey('j'), runeKey('l'))

	nodes := sampleNodes()
	util := nodes[1].Children[0]
	util.Children = append(util.Children, &model.Node{ID: "org.util.Lists", Text: "Lists", Href: "Lists.html", Coverage: "33%"})

	m = send(m, BundleLoadedMsg{Bundle: &loader.Bundle{
		Dataset: &model.Dataset{Nodes: nodes},
	}})

	if got := m.Tree().Len(); got != 11 {
		t.Errorf("len after reload = %d, want 11", got)
	}
	assertRows(t, m, "net", "net.finmath", "org")
	if id, _, _ := m.Tree().Selection(); id != "net" {
		t.Errorf("selection after reload = %q, want net", id)
	}
	if status, isErr := m.Status(); status != "Reloaded 11 nodes" || isErr {
		t.Errorf("status = %q (err %v)", status, isErr)
	}
}

func TestModelReloadError(t *testing.T) {
	m := newTestModel(t, "", Options{})
	m = send(m, BundleLoadedMsg{Err: errors.New("boom")})

	status, isErr := m.Status()
	if !isErr || !strings.Contains(status, "boom") {
		t.Errorf("status = %q (err %v)", status, isErr)
	}
	if got := m.Tree().Len(); got != 10 {
		t.Errorf("tree replaced after failed reload, len = %d", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, "", Options{})
	for _, k := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}
