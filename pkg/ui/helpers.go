package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		// Even suffix is too wide, truncate suffix
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// padRight pads string s with spaces on the right to width cells
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft pads string s with spaces on the left to width cells
func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// truncate truncates string s to maxWidth cells
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// sliceCells returns the part of s between cell columns from and
// from+width, padded to exactly width cells. A wide rune straddling either
// edge is replaced by spaces.
func sliceCells(s string, from, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	col, used := 0, 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if col+w <= from {
			col += w
			continue
		}
		if col < from {
			// Straddles the left edge
			pad := col + w - from
			sb.WriteString(strings.Repeat(" ", min(pad, width-used)))
			used += min(pad, width-used)
			col += w
			continue
		}
		if used+w > width {
			break
		}
		sb.WriteRune(r)
		used += w
		col += w
	}
	if used < width {
		sb.WriteString(strings.Repeat(" ", width-used))
	}
	return sb.String()
}

func plainText(markup string) string {
	return model.PlainText(markup)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
