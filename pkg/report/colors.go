package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vanderheijden86/covtree/pkg/model"
)

// Coverage bands, highest first.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandModerate  = "moderate"
	BandPoor      = "poor"
	BandCritical  = "critical"
	BandUnknown   = "unknown"
)

// ColorClass maps a coverage percentage to its band.
func ColorClass(coverage float64) string {
	switch {
	case coverage >= 70:
		return BandExcellent
	case coverage >= 50:
		return BandGood
	case coverage >= 30:
		return BandModerate
	case coverage >= 15:
		return BandPoor
	default:
		return BandCritical
	}
}

// FormatPct formats a percentage with one decimal.
func FormatPct(coverage float64) string {
	return fmt.Sprintf("%.1f%%", coverage)
}

var pctPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// ParsePercent extracts the first percentage from badge markup such as
// `<span class="pct">71%</span>`.
func ParsePercent(markup string) (float64, bool) {
	m := pctPattern.FindStringSubmatch(model.PlainText(markup))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BadgeClass returns the band of a badge, or BandUnknown when it carries no
// percentage.
func BadgeClass(markup string) string {
	pct, ok := ParsePercent(markup)
	if !ok {
		return BandUnknown
	}
	return ColorClass(pct)
}
