package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/charmbracelet/glamour"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Legend is a markdown description shown beside the tree.
type Legend struct {
	Name     string
	Markdown string
}

// CoverageLegend explains the badges and their colour bands.
var CoverageLegend = Legend{
	Name: "coverage",
	Markdown: `## Coverage

Each package and class shows a badge with the share of its statements
that at least one test executed.

| Band | Coverage |
|------|----------|
| excellent | 70% and above |
| good | 50% to 70% |
| moderate | 30% to 50% |
| poor | 15% to 30% |
| critical | below 15% |

Packages without a report page are shown as plain labels.
`,
}

// NavigationLegend lists the keys the tree understands.
var NavigationLegend = Legend{
	Name: "navigation",
	Markdown: `## Navigation

- **Up / Down** move the selection and wrap at either end
- **Right** opens the selected package, **Left** closes it
- **Enter** opens the page of the selected class
- Typing in the search box filters the tree; a query containing a dot
  matches fully qualified names, anything else matches labels
`,
}

// Legends returns every legend in display order.
func Legends() []Legend {
	return []Legend{CoverageLegend, NavigationLegend}
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// HTML renders the legend for the static report.
func (l Legend) HTML() (template.HTML, error) {
	return renderMarkdown(newMarkdown(), l.Markdown)
}

func renderMarkdown(md goldmark.Markdown, src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render legend: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// terminalCache holds glamour output per legend, style and width. Building
// a glamour renderer is slow enough to show when the browser is resized.
var terminalCache, _ = lru.New[string, string](32)

// Terminal renders the legend for the terminal browser. An empty style
// selects glamour's automatic light/dark detection.
func (l Legend) Terminal(style string, width int) (string, error) {
	key := fmt.Sprintf("%s|%s|%d", l.Name, style, width)
	if out, ok := terminalCache.Get(key); ok {
		return out, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("legend renderer: %w", err)
	}
	out, err := r.Render(l.Markdown)
	if err != nil {
		return "", fmt.Errorf("render legend: %w", err)
	}
	// Auto style depends on the terminal, so only fixed styles are cached.
	if style != "" {
		terminalCache.Add(key, out)
	}
	return out, nil
}
