package tree

import "testing"

func TestHandleEventToggle(t *testing.T) {
	tr, _ := newSampleTree(t, "")

	tr.HandleEvent(EventNodeToggle, "net")
	assertVisible(t, tr, "net", "net.finmath", "org")

	tr.HandleEvent(EventNodeToggle, "net")
	assertVisible(t, tr, "net", "org")
}

func TestHandleEventLinkActivate(t *testing.T) {
	var got string
	tr, err := New(Config{
		Nodes:     sampleNodes(),
		URLPrefix: "/report/",
		Navigator: NavigatorFunc(func(url string) { got = url }),
	})
	if err != nil {
		t.Fatal(err)
	}

	tr.HandleEvent(EventLinkActivate, "net.finmath")
	if got != "/report/net/finmath/index.html" {
		t.Errorf("navigated to %q", got)
	}

	got = ""
	tr.HandleEvent(EventLinkActivate, "net")
	if got != "" {
		t.Errorf("plain label navigated to %q", got)
	}
}

func TestHandleEventHover(t *testing.T) {
	tr, v := newSampleTree(t, "")

	tr.HandleEvent(EventNodeHover, "net")
	if tr.HoveredID() != "net" || !v.hovered["net"] {
		t.Fatalf("hovered = %q", tr.HoveredID())
	}

	tr.HandleEvent(EventNodeHover, "org")
	if v.hovered["net"] || !v.hovered["org"] {
		t.Errorf("hover should move: %v", v.hovered)
	}

	// A late unhover for a row the pointer already left does nothing.
	tr.HandleEvent(EventNodeUnhover, "net")
	if tr.HoveredID() != "org" {
		t.Errorf("hovered = %q, want org", tr.HoveredID())
	}

	tr.HandleEvent(EventNodeUnhover, "org")
	if tr.HoveredID() != "" || v.hovered["org"] {
		t.Error("unhover should clear the hover state")
	}
}

func TestEventString(t *testing.T) {
	tests := map[Event]string{
		EventLinkActivate: "link-activate",
		EventNodeHover:    "node-hover",
		EventNodeUnhover:  "node-unhover",
		EventNodeToggle:   "node-toggle",
		Event(42):         "unknown",
	}
	for ev, want := range tests {
		if got := ev.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", int(ev), got, want)
		}
	}
}
