package model

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoNodes is returned when a dataset carries no root node list at all.
var ErrNoNodes = errors.New("dataset has no root nodes")

// Node is one package or class entry in the navigation hierarchy as supplied
// by the report generator. The host owns it; the tree widget only reads it.
type Node struct {
	ID       string  `json:"id" yaml:"id"`                                 // Dot-delimited, globally unique (e.g. "net.finmath.functions")
	Text     string  `json:"text" yaml:"text"`                             // Display label, may contain inline markup
	Href     string  `json:"href,omitempty" yaml:"href,omitempty"`         // Report page; empty renders a plain label
	Coverage string  `json:"coverage,omitempty" yaml:"coverage,omitempty"` // Pre-rendered badge markup
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsPackage reports whether the node has children and therefore an expand
// affordance.
func (n *Node) IsPackage() bool {
	return n != nil && len(n.Children) > 0
}

// Dataset is the read-once initialization input for a tree widget.
type Dataset struct {
	Nodes         []*Node `json:"nodes" yaml:"nodes"`
	CurrentNodeID string  `json:"currentNodeId,omitempty" yaml:"current_node_id,omitempty"`
	URLPrefix     string  `json:"urlPrefix,omitempty" yaml:"url_prefix,omitempty"`
}

// Validate checks the dataset can be used to construct a tree.
// A nil node list is a configuration error; an empty, non-nil list is a
// valid (empty) tree.
func (d *Dataset) Validate() error {
	if d == nil || d.Nodes == nil {
		return ErrNoNodes
	}
	return nil
}

// CountNodes returns the total number of nodes in the dataset.
func (d *Dataset) CountNodes() int {
	if d == nil {
		return 0
	}
	count := 0
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			count++
			walk(n.Children)
		}
	}
	walk(d.Nodes)
	return count
}

// PlainText strips inline markup from a label, returning only its text
// content. Entities are decoded. Malformed markup degrades to whatever text
// the tokenizer could recover.
func PlainText(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
