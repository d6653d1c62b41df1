package tree

import "strings"

// Key is a navigation key understood by HandleKey.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft  // Collapse
	KeyRight // Expand
	KeyEnter // Activate
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyEnter:
		return "enter"
	default:
		return "none"
	}
}

// ParseKey maps a key name as reported by browsers ("ArrowUp") or terminals
// ("up") to a Key. Unknown names map to KeyNone.
func ParseKey(name string) Key {
	switch strings.ToLower(name) {
	case "arrowup", "up":
		return KeyUp
	case "arrowdown", "down":
		return KeyDown
	case "arrowleft", "left":
		return KeyLeft
	case "arrowright", "right":
		return KeyRight
	case "enter", "return":
		return KeyEnter
	default:
		return KeyNone
	}
}

// KeyCode maps a legacy DOM keyCode to a Key.
func KeyCode(code int) Key {
	switch code {
	case 38:
		return KeyUp
	case 40:
		return KeyDown
	case 37:
		return KeyLeft
	case 39:
		return KeyRight
	case 13:
		return KeyEnter
	default:
		return KeyNone
	}
}

// HandleKey applies one key press and reports whether the key was one of
// the navigation keys.
//
// The visible list is recomputed first; a selection that is no longer
// visible (a search or toggle removed it) is dropped before the key is
// processed. Up and down wrap around the visible list.
func (t *Tree) HandleKey(k Key) bool {
	visible := t.VisibleIDs()
	t.syncSelection(visible)

	switch k {
	case KeyUp:
		if len(visible) == 0 {
			return true
		}
		next := len(visible) - 1
		if t.selectedIndex >= 0 {
			next = (t.selectedIndex - 1 + len(visible)) % len(visible)
		}
		t.moveSelection(visible, next)
	case KeyDown:
		if len(visible) == 0 {
			return true
		}
		next := 0
		if t.selectedIndex >= 0 {
			next = (t.selectedIndex + 1) % len(visible)
		}
		t.moveSelection(visible, next)
	case KeyRight:
		if t.selectedID != "" {
			t.setOpen(t.byID[t.selectedID], true)
			t.refresh()
		}
	case KeyLeft:
		if t.selectedID != "" {
			t.setOpen(t.byID[t.selectedID], false)
			t.refresh()
		}
	case KeyEnter:
		t.activateLink(t.selectedID)
	default:
		return false
	}
	return true
}

// ResetSelection clears the keyboard highlight and selection.
func (t *Tree) ResetSelection() {
	if t.selectedID != "" {
		t.view.SetSelected(t.selectedID, false)
	}
	t.selectedID = ""
	t.selectedIndex = -1
}

// Selection returns the selected id and its index in the visible list.
func (t *Tree) Selection() (id string, index int, ok bool) {
	if t.selectedID == "" {
		return "", -1, false
	}
	return t.selectedID, t.selectedIndex, true
}

// Select moves the keyboard selection to a visible node.
func (t *Tree) Select(id string) bool {
	visible := t.VisibleIDs()
	for i, vid := range visible {
		if vid == id {
			t.moveSelection(visible, i)
			return true
		}
	}
	return false
}

// syncSelection drops a stale selection, or re-reads its index when rows
// above it appeared or vanished.
func (t *Tree) syncSelection(visible []string) {
	if t.selectedID == "" {
		return
	}
	for i, id := range visible {
		if id == t.selectedID {
			t.selectedIndex = i
			return
		}
	}
	t.ResetSelection()
}

func (t *Tree) moveSelection(visible []string, index int) {
	if t.selectedID != "" {
		t.view.SetSelected(t.selectedID, false)
	}
	if index < 0 || index >= len(visible) {
		t.selectedID = ""
		t.selectedIndex = -1
		return
	}
	t.selectedID = visible[index]
	t.selectedIndex = index
	t.view.SetSelected(t.selectedID, true)
}
