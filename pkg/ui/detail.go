package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/report"
	"github.com/vanderheijden86/covtree/pkg/tree"
)

// renderDetail draws the side pane for node n: its coverage summary and,
// when a class record exists, the tests that touched it.
func (m Model) renderDetail(n *tree.Node, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	t := m.theme
	var lines []string
	add := func(s string) { lines = append(lines, s) }

	if n == nil {
		add(t.MutedText.Render("No node selected"))
		return strings.Join(lines, "\n")
	}

	add(RenderKindBadge(t, n.HasChildren()) + " " + t.PrimaryBold.Render(truncate(model.PlainText(n.Text), max(width-2, 1))))
	add(t.MutedText.Render(truncate(n.ID, width)))
	if url := m.tree.LinkURL(n); url != "" {
		add(t.LinkText.Render(truncate(url, width)))
	}
	if pct, ok := report.ParsePercent(n.Coverage); ok {
		barWidth := max(width-8, 0)
		add(RenderMiniBar(pct, barWidth, t) + " " + RenderCoverageBadge(t, n.Coverage, 6))
	}
	if n.HasChildren() {
		add(t.MutedText.Render(fmt.Sprintf("%d children", len(n.Children))))
	}

	rec := m.records[n.ID]
	if rec != nil {
		add("")
		add(RenderDivider(width))
		add(fmt.Sprintf("lines %d-%d, %d methods", rec.StartLine, rec.EndLine, len(rec.Methods)))
		add(fmt.Sprintf("%d of %d lines covered", rec.CoveredLines(), len(rec.SrcFileLines)))
		add(t.Renderer.NewStyle().Foreground(ColorSuccess).Render(fmt.Sprintf("%d passed", rec.PassCount())) +
			"  " + t.Renderer.NewStyle().Foreground(ColorDanger).Render(fmt.Sprintf("%d failed", rec.FailCount())))
		add("")
		for _, id := range rec.SortedTestIDs() {
			tr := rec.Tests[id]
			mark := t.Renderer.NewStyle().Foreground(ColorSuccess).Render("✓")
			if !tr.Pass {
				mark = t.Renderer.NewStyle().Foreground(ColorDanger).Render("✗")
			}
			add(mark + " " + truncate(tr.Name, max(width-2, 0)))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return t.Renderer.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}
