package tree

// View receives projections of tree state. Implementations turn state into a
// display (an HTML DOM, a terminal frame) and never mutate the tree.
//
// All calls happen synchronously from the tree operation that caused them.
type View interface {
	// Render replaces the whole projection with the given roots.
	Render(roots []*Node)
	// UpdateNode refreshes one row's arrow, icon, child list and search
	// classes after its open/hidden/match state changed.
	UpdateNode(n *Node)
	// UpdateBadges rebuilds the badge strip for the visible rows, in order.
	UpdateBadges(visible []*Node)
	// UpdateExtent reports the width, in cells, of the widest visible row.
	UpdateExtent(cells int)
	SetSelected(id string, selected bool)
	SetHovered(id string, hovered bool)
	SetCurrent(id string)
	ShowRootList(show bool)
	ShowNoResults(show bool)
}

// NopView discards every projection. It is the default View.
type NopView struct{}

func (NopView) Render([]*Node)           {}
func (NopView) UpdateNode(*Node)         {}
func (NopView) UpdateBadges([]*Node)     {}
func (NopView) UpdateExtent(int)         {}
func (NopView) SetSelected(string, bool) {}
func (NopView) SetHovered(string, bool)  {}
func (NopView) SetCurrent(string)        {}
func (NopView) ShowRootList(bool)        {}
func (NopView) ShowNoResults(bool)       {}

// Navigator replaces the current page with the given URL.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

// Navigate calls f(url).
func (f NavigatorFunc) Navigate(url string) { f(url) }
