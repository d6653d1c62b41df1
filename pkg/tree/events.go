package tree

// Event is a pointer event on a row.
type Event int

const (
	EventLinkActivate Event = iota
	EventNodeHover
	EventNodeUnhover
	EventNodeToggle
)

func (e Event) String() string {
	switch e {
	case EventLinkActivate:
		return "link-activate"
	case EventNodeHover:
		return "node-hover"
	case EventNodeUnhover:
		return "node-unhover"
	case EventNodeToggle:
		return "node-toggle"
	default:
		return "unknown"
	}
}

// HandleEvent dispatches a pointer event on the node with the given id.
// Unknown ids are ignored.
func (t *Tree) HandleEvent(ev Event, id string) {
	if t.byID[id] == nil {
		return
	}
	switch ev {
	case EventLinkActivate:
		t.activateLink(id)
	case EventNodeHover:
		t.hover(id)
	case EventNodeUnhover:
		t.unhover(id)
	case EventNodeToggle:
		t.ToggleNode(id)
	}
}

// activateLink navigates to the node's page. Plain labels do nothing.
func (t *Tree) activateLink(id string) {
	n := t.byID[id]
	if n == nil || !n.IsLink() {
		return
	}
	t.nav.Navigate(t.LinkURL(n))
}

func (t *Tree) hover(id string) {
	if t.hoveredID == id {
		return
	}
	if t.hoveredID != "" {
		t.view.SetHovered(t.hoveredID, false)
	}
	t.hoveredID = id
	t.view.SetHovered(id, true)
}

func (t *Tree) unhover(id string) {
	if t.hoveredID != id {
		return
	}
	t.hoveredID = ""
	t.view.SetHovered(id, false)
}
