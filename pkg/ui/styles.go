package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/covtree/pkg/report"
)

// Adaptive colors shared by the theme and the row renderer.
var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorInfo        = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess     = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorDanger      = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	colorOnBadge = lipgloss.Color("#FFFFFF")
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderKindBadge returns a one-cell colored square marking a package or class.
func RenderKindBadge(t Theme, isPackage bool) string {
	label, bg := t.NodeIcon(isPackage)
	return t.Renderer.NewStyle().
		Foreground(colorOnBadge).
		Background(bg).
		Bold(true).
		Render(label)
}

// BadgeText returns the plain badge of a node, right-aligned in width
// cells: the percentage when the markup carries one, else its text.
func BadgeText(markup string, width int) string {
	if width <= 0 || markup == "" {
		return strings.Repeat(" ", max(width, 0))
	}
	text := plainBadge(markup)
	return padLeft(truncate(text, width), width)
}

func plainBadge(markup string) string {
	if pct, ok := report.ParsePercent(markup); ok {
		return report.FormatPct(pct)
	}
	return strings.TrimSpace(plainText(markup))
}

// RenderCoverageBadge renders a node's badge in its band color.
func RenderCoverageBadge(t Theme, markup string, width int) string {
	text := BadgeText(markup, width)
	if markup == "" {
		return text
	}
	return t.Renderer.NewStyle().
		Foreground(t.BandColor(report.BadgeClass(markup))).
		Render(text)
}

// RenderMiniBar draws pct as a bar of width cells in the band color.
func RenderMiniBar(pct float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	filled := clamp(int(pct/100*float64(width)), 0, width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(t.BandColor(report.ColorClass(pct))).Render(bar)
}

// RenderDivider draws a horizontal rule.
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
