package htmlview

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

// setClasses writes a class attribute from the non-empty names.
func setClasses(n *html.Node, names ...string) {
	var kept []string
	for _, c := range names {
		if c != "" {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// HasClass reports whether n carries the class name.
func HasClass(n *html.Node, name string) bool {
	if n == nil {
		return false
	}
	return slices.Contains(strings.Fields(attr(n, "class")), name)
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func setText(n *html.Node, s string) {
	removeChildren(n)
	n.AppendChild(text(s))
}

// appendMarkup parses trusted inline markup (labels, badges) into parent.
// Markup that does not parse is added as plain text.
func appendMarkup(parent *html.Node, markup string) {
	if markup == "" {
		return
	}
	if !strings.ContainsAny(markup, "<&") {
		parent.AppendChild(text(markup))
		return
	}
	ctx := element(parent.DataAtom)
	if ctx.DataAtom == 0 {
		ctx = element(atom.Div)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		parent.AppendChild(text(markup))
		return
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

// textContent concatenates the text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
