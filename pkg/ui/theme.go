package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/covtree/pkg/report"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Coverage bands
	Excellent lipgloss.AdaptiveColor
	Good      lipgloss.AdaptiveColor
	Moderate  lipgloss.AdaptiveColor
	Poor      lipgloss.AdaptiveColor
	Critical  lipgloss.AdaptiveColor

	// Node kinds
	Package lipgloss.AdaptiveColor
	Class   lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once instead of per frame
	MutedText   lipgloss.Style // Tree guides, counters
	LinkText    lipgloss.Style // Labels of nodes with a report page
	MatchText   lipgloss.Style // Labels that matched the active search
	CurrentText lipgloss.Style // The node the report opened at
	HoverText   lipgloss.Style // Row under the mouse
	PrimaryBold lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim

		Excellent: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		Good:      lipgloss.AdaptiveColor{Light: "#36B37E", Dark: "#57D9A3"}, // Light green
		Moderate:  lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"}, // Yellow
		Poor:      lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Critical:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}, // Red

		Package: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#904EE2"}, // Purple
		Class:   lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"}, // Blue

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.LinkText = r.NewStyle().Foreground(ColorInfo)
	t.MatchText = r.NewStyle().Foreground(ThemeFg("#FFD700")).Bold(true)
	t.CurrentText = r.NewStyle().Underline(true).Bold(true)
	t.HoverText = r.NewStyle().Background(ColorBgSubtle)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)

	return t
}

// BandColor returns the color of a coverage band name.
func (t Theme) BandColor(band string) lipgloss.AdaptiveColor {
	switch band {
	case report.BandExcellent:
		return t.Excellent
	case report.BandGood:
		return t.Good
	case report.BandModerate:
		return t.Moderate
	case report.BandPoor:
		return t.Poor
	case report.BandCritical:
		return t.Critical
	default:
		return t.Subtext
	}
}

// NodeIcon returns the one-cell kind badge of a node and its color.
func (t Theme) NodeIcon(isPackage bool) (string, lipgloss.AdaptiveColor) {
	if isPackage {
		return "P", t.Package
	}
	return "C", t.Class
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
