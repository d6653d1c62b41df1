// Package ui implements the terminal coverage browser: a bubbletea model
// driving a package tree through its keyboard and pointer operations.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/covtree/pkg/debug"
	"github.com/vanderheijden86/covtree/pkg/loader"
	"github.com/vanderheijden86/covtree/pkg/metrics"
	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/report"
	"github.com/vanderheijden86/covtree/pkg/tree"
	"github.com/vanderheijden86/covtree/pkg/watcher"
)

// Layout constants
const (
	headerRows     = 2 // Title bar and search line
	footerRows     = 1
	scrollStep     = 4 // Cells per horizontal scroll key press
	detailMinWidth = 80
)

// FileChangedMsg is sent when the dataset changes on disk
type FileChangedMsg struct{}

// BundleLoadedMsg carries the result of a background reload.
type BundleLoadedMsg struct {
	Bundle *loader.Bundle
	Err    error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd loads the dataset at path and its class records.
func ReloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		b, err := loader.LoadBundle(context.Background(), path)
		return BundleLoadedMsg{Bundle: b, Err: err}
	}
}

// Options configures a Model.
type Options struct {
	Title        string
	BadgeWidth   int
	ShowBadges   bool
	ShowDetail   bool
	GlamourStyle string // "dark", "light", "notty", ...
	Watcher      *watcher.Watcher
	Renderer     *lipgloss.Renderer
}

// navRecorder is the tree's Navigator inside the browser. Activations are
// picked up after each tree call, since the model itself is copied by value.
type navRecorder struct {
	url string
}

func (r *navRecorder) Navigate(url string) { r.url = url }

func (r *navRecorder) take() string {
	url := r.url
	r.url = ""
	return url
}

// Model is the bubbletea model of the coverage browser.
type Model struct {
	tree    *tree.Tree
	view    *TermView
	nav     *navRecorder
	records map[string]*model.ClassCoverage

	path  string
	title string

	theme        Theme
	search       textinput.Model
	glamourStyle string
	watcher      *watcher.Watcher

	width      int
	height     int
	offset     int // Index of the first row on screen
	scrollLeft int // Horizontal scroll of the tree pane, in cells

	badgeWidth int
	showBadges bool
	showDetail bool
	showHelp   bool
	helpText   string
	helpWidth  int

	detailID      string // Node whose detail pane was opened with enter
	lastOpened    string // Last URL activated
	statusMsg     string
	statusIsError bool
}

// NewModel builds the browser over a loaded bundle.
func NewModel(b *loader.Bundle, opts Options) (Model, error) {
	if b == nil || b.Dataset == nil {
		return Model{}, model.ErrNoNodes
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	if opts.BadgeWidth <= 0 {
		opts.BadgeWidth = 6
	}
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search packages and classes (use . for ids)"
	ti.CharLimit = 200

	m := Model{
		nav:          &navRecorder{},
		path:         b.Path,
		title:        opts.Title,
		theme:        DefaultTheme(r),
		search:       ti,
		glamourStyle: opts.GlamourStyle,
		watcher:      opts.Watcher,
		badgeWidth:   opts.BadgeWidth,
		showBadges:   opts.ShowBadges,
		showDetail:   opts.ShowDetail,
	}
	if m.title == "" {
		m.title = "Coverage report"
	}
	if err := m.load(b); err != nil {
		return Model{}, err
	}
	if cur := m.tree.CurrentID(); cur != "" {
		m.tree.Select(cur)
	}
	return m, nil
}

// load replaces the tree with one built from b.
func (m *Model) load(b *loader.Bundle) error {
	view := NewTermView()
	t, err := tree.FromDataset(b.Dataset, view, m.nav)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}
	m.tree = t
	m.view = view
	m.records = b.Records
	if b.Path != "" {
		m.path = b.Path
	}
	return nil
}

// Tree returns the widget driven by the browser.
func (m Model) Tree() *tree.Tree { return m.tree }

// TermView returns the terminal projection.
func (m Model) TermView() *TermView { return m.view }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// LastOpened returns the last URL activated from the tree.
func (m Model) LastOpened() string { return m.lastOpened }

// ScrollLeft returns the horizontal scroll offset of the tree pane.
func (m Model) ScrollLeft() int { return m.scrollLeft }

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(m.width-4, 10)
		m.clampScroll()
		m.ensureVisible()
		return m, nil

	case FileChangedMsg:
		m.statusMsg = "Reloading..."
		m.statusIsError = false
		return m, ReloadCmd(m.path)

	case BundleLoadedMsg:
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = WatchFileCmd(m.watcher)
		}
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Reload failed: %v", msg.Err)
			m.statusIsError = true
			return m, cmd
		}
		m.reload(msg.Bundle)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// reload swaps in a fresh bundle, keeping open nodes and the selection.
func (m *Model) reload(b *loader.Bundle) {
	open := openPackages(m.tree)
	selected, _, _ := m.tree.Selection()
	query := m.search.Value()

	if err := m.load(b); err != nil {
		m.statusMsg = fmt.Sprintf("Reload failed: %v", err)
		m.statusIsError = true
		return
	}
	reopen(m.tree, open)
	if query != "" {
		m.tree.Search(query)
	}
	if selected != "" {
		m.tree.Select(selected)
	}
	m.clampScroll()
	m.ensureVisible()
	m.statusMsg = fmt.Sprintf("Reloaded %d nodes", m.tree.Len())
	m.statusIsError = false
	debug.Log("ui: reloaded %s", m.path)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.search.Focused() {
		switch key {
		case "esc":
			m.search.SetValue("")
			m.search.Blur()
			m.runSearch()
			return m, nil
		case "enter":
			m.search.Blur()
			return m, nil
		case "up", "down":
			m.navigate(tree.ParseKey(key))
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.runSearch()
		}
		return m, cmd
	}

	if m.showHelp {
		switch key {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.runSearch()
		} else if m.detailID != "" {
			m.detailID = ""
		}
	case "up", "k":
		m.navigate(tree.KeyUp)
	case "down", "j":
		m.navigate(tree.KeyDown)
	case "left", "h":
		m.navigate(tree.KeyLeft)
	case "right", "l":
		m.navigate(tree.KeyRight)
	case "enter":
		m.navigate(tree.KeyEnter)
	case " ", "space":
		if id, _, ok := m.tree.Selection(); ok {
			m.tree.HandleEvent(tree.EventNodeToggle, id)
			m.clampScroll()
		}
	case "X":
		m.tree.OpenAll()
		m.clampScroll()
		m.ensureVisible()
	case "Z":
		m.tree.CloseAll()
		m.clampScroll()
		m.ensureVisible()
	case "<", "shift+left":
		m.scrollBy(-scrollStep)
	case ">", "shift+right":
		m.scrollBy(scrollStep)
	case "home":
		m.scrollLeft = 0
	case "tab":
		m.showDetail = !m.showDetail
		m.clampScroll()
	case "b":
		m.showBadges = !m.showBadges
		m.clampScroll()
	case "y":
		m.copyLink()
	case "?":
		m.showHelp = true
		m.renderHelp()
	}
	return m, nil
}

// navigate hands one key to the tree and follows up on what it did.
func (m *Model) navigate(k tree.Key) {
	m.tree.HandleKey(k)
	if url := m.nav.take(); url != "" {
		m.opened(url)
	}
	m.clampScroll()
	m.ensureVisible()
}

// opened records a link activation. Class nodes with a record open the
// detail pane; anything else reports the target URL.
func (m *Model) opened(url string) {
	m.lastOpened = url
	id, _, _ := m.tree.Selection()
	if h := m.tree.HoveredID(); h != "" && m.tree.LinkURL(m.tree.Node(h)) == url {
		id = h
	}
	if _, ok := m.records[id]; ok {
		m.detailID = id
		m.showDetail = true
		m.statusMsg = ""
		return
	}
	m.statusMsg = "Open " + url
	m.statusIsError = false
}

func (m *Model) runSearch() {
	res := m.tree.Search(m.search.Value())
	m.offset = 0
	m.clampScroll()
	m.ensureVisible()
	switch {
	case res.Query == "":
		m.statusMsg = ""
	case res.Total == 0:
		m.statusMsg = "No results found"
	case res.Total == 1:
		m.statusMsg = "1 match"
	default:
		m.statusMsg = fmt.Sprintf("%d matches", res.Total)
	}
	m.statusIsError = false
}

func (m *Model) copyLink() {
	id, _, ok := m.tree.Selection()
	if !ok {
		m.statusMsg = "Nothing selected"
		m.statusIsError = true
		return
	}
	url := m.tree.LinkURL(m.tree.Node(id))
	if url == "" {
		m.statusMsg = fmt.Sprintf("%s has no page", id)
		m.statusIsError = true
		return
	}
	if err := clipboard.WriteAll(url); err != nil {
		m.statusMsg = fmt.Sprintf("Clipboard error: %v", err)
		m.statusIsError = true
		return
	}
	m.statusMsg = "Copied " + url
	m.statusIsError = false
}

func (m *Model) renderHelp() {
	width := max(m.width-4, 40)
	if m.helpText != "" && m.helpWidth == width {
		return
	}
	var parts []string
	for _, l := range report.Legends() {
		out, err := l.Terminal(m.glamourStyle, width)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Help: %v", err)
			m.statusIsError = true
			return
		}
		parts = append(parts, strings.TrimRight(out, "\n"))
	}
	m.helpText = strings.Join(parts, "\n")
	m.helpWidth = width
}

// ══════════════════════════════════════════════════════════════════════════════
// LAYOUT
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) listHeight() int {
	return max(m.height-headerRows-footerRows, 1)
}

// paneWidths splits the screen between the tree pane and the detail pane.
func (m Model) paneWidths() (treePane, detail int) {
	if m.showDetail && m.width >= detailMinWidth {
		treePane = m.width * 3 / 5
		return treePane, m.width - treePane - 1
	}
	return m.width, 0
}

// treeCells is the width of the scrollable tree area, left of the badge
// rail.
func (m Model) treeCells() int {
	pane, _ := m.paneWidths()
	if m.showBadges {
		pane -= m.badgeWidth + 1
	}
	return max(pane, 1)
}

func (m *Model) scrollBy(delta int) {
	m.scrollLeft += delta
	m.clampScroll()
}

// clampScroll keeps the horizontal offset within the scrollable extent.
func (m *Model) clampScroll() {
	m.scrollLeft = clamp(m.scrollLeft, 0, m.view.Extent()-m.treeCells())
}

// ensureVisible moves the vertical window so the selection is on screen.
func (m *Model) ensureVisible() {
	rows := len(m.view.Rows())
	h := m.listHeight()
	if _, idx, ok := m.tree.Selection(); ok {
		if idx < m.offset {
			m.offset = idx
		} else if idx >= m.offset+h {
			m.offset = idx - h + 1
		}
	}
	m.offset = clamp(m.offset, 0, rows-h)
}

// ══════════════════════════════════════════════════════════════════════════════
// MOUSE
// ══════════════════════════════════════════════════════════════════════════════

// rowAt maps a screen position to a visible row. cell is the column within
// the row's plain layout, scroll included.
func (m Model) rowAt(x, y int) (n *tree.Node, cell int, ok bool) {
	if x < 0 || x >= m.treeCells() {
		return nil, 0, false
	}
	i := y - headerRows
	if i < 0 || i >= m.listHeight() {
		return nil, 0, false
	}
	rows := m.view.Rows()
	if m.offset+i >= len(rows) {
		return nil, 0, false
	}
	return rows[m.offset+i], x + m.scrollLeft, true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.showHelp {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.offset = clamp(m.offset-1, 0, len(m.view.Rows())-m.listHeight())
		return
	case tea.MouseButtonWheelDown:
		m.offset = clamp(m.offset+1, 0, len(m.view.Rows())-m.listHeight())
		return
	case tea.MouseButtonWheelLeft:
		m.scrollBy(-scrollStep)
		return
	case tea.MouseButtonWheelRight:
		m.scrollBy(scrollStep)
		return
	}

	n, cell, ok := m.rowAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		if hovered := m.tree.HoveredID(); hovered != "" && (!ok || n.ID != hovered) {
			m.tree.HandleEvent(tree.EventNodeUnhover, hovered)
		}
		if ok {
			m.tree.HandleEvent(tree.EventNodeHover, n.ID)
		}
	case tea.MouseActionPress:
		if !ok || msg.Button != tea.MouseButtonLeft {
			return
		}
		m.tree.Select(n.ID)
		indent := n.Depth * tree.IndentCells
		switch {
		case cell < indent:
		case n.HasChildren() && cell < indent+2:
			m.tree.HandleEvent(tree.EventNodeToggle, n.ID)
		default:
			m.tree.HandleEvent(tree.EventLinkActivate, n.ID)
			if url := m.nav.take(); url != "" {
				m.opened(url)
			}
		}
		m.clampScroll()
		m.ensureVisible()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	defer metrics.Timer(metrics.UIRender)()

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.renderSearchLine())
	sb.WriteString("\n")

	var body string
	if m.showHelp {
		body = m.renderHelpBody()
	} else {
		body = m.renderBody()
	}
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Header.Render(m.title)
	info := fmt.Sprintf(" %s  %d nodes", filepath.Base(m.path), m.tree.Len())
	if res := m.tree.LastSearch(); res.Query != "" {
		info += fmt.Sprintf("  %d matches", res.Total)
	}
	return title + t.MutedText.Render(truncate(info, max(m.width-lipgloss.Width(title), 0)))
}

func (m Model) renderSearchLine() string {
	if m.search.Focused() || m.search.Value() != "" {
		return m.search.View()
	}
	return m.theme.MutedText.Render("/ search  ? help")
}

func (m Model) renderHelpBody() string {
	lines := strings.Split(m.helpText, "\n")
	h := m.listHeight()
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBody() string {
	h := m.listHeight()
	treePane, detailWidth := m.paneWidths()

	lines := make([]string, 0, h)
	rows := m.view.Rows()
	switch {
	case m.view.NoResultsShown():
		lines = append(lines, m.theme.MutedText.Render(padRight("No results found", treePane)))
	case m.view.RootListShown():
		end := min(m.offset+h, len(rows))
		for _, n := range rows[m.offset:end] {
			lines = append(lines, m.renderRow(n))
		}
	}
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", treePane))
	}
	left := strings.Join(lines, "\n")

	if detailWidth <= 0 {
		return left
	}
	id := m.detailID
	if id == "" {
		id = m.view.SelectedID()
	}
	detail := m.renderDetail(m.tree.Node(id), detailWidth-1, h)
	sep := m.theme.MutedText.Render(strings.TrimSuffix(strings.Repeat("│\n", h), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sep, " "+strings.ReplaceAll(detail, "\n", "\n "))
}

// RowText returns the plain layout of a row: indent, arrow for packages,
// kind icon and label. Its width is tree.RowWidth(n).
func RowText(n *tree.Node) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", n.Depth*tree.IndentCells))
	if n.HasChildren() {
		if n.IsOpen {
			sb.WriteString("▾ ")
		} else {
			sb.WriteString("▸ ")
		}
	}
	icon, _ := Theme{}.NodeIcon(n.HasChildren())
	sb.WriteString(icon)
	sb.WriteString(" ")
	sb.WriteString(model.PlainText(n.Text))
	return sb.String()
}

func (m Model) renderRow(n *tree.Node) string {
	t := m.theme
	text := sliceCells(RowText(n), m.scrollLeft, m.treeCells())

	st := t.Base
	switch {
	case n.IsSearchMatch:
		st = t.MatchText
	case n.ID == m.view.CurrentID():
		st = t.CurrentText
	case n.IsLink():
		st = t.LinkText
	}
	if n.ID == m.view.HoveredID() {
		st = st.Background(ColorBgSubtle)
	}
	if n.ID == m.view.SelectedID() {
		st = st.Background(t.Highlight).Bold(true)
	}
	row := st.Render(text)
	if m.showBadges {
		row += " " + RenderCoverageBadge(t, n.Coverage, m.badgeWidth)
	}
	return row
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.statusMsg != "" {
		st := t.MutedText
		if m.statusIsError {
			st = t.Renderer.NewStyle().Foreground(ColorDanger)
		}
		return st.Render(truncate(m.statusMsg, m.width))
	}
	pos := ""
	if _, idx, ok := m.tree.Selection(); ok {
		pos = fmt.Sprintf("%d/%d", idx+1, len(m.view.Rows()))
	}
	hint := "↑↓ move  ←→ fold  enter open  X/Z all  </> scroll  y copy  q quit"
	return t.MutedText.Render(truncate(padRight(hint, max(m.width-len(pos)-1, 0))+" "+pos, m.width))
}
