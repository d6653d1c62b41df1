package export

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/covtree/pkg/model"
	"github.com/vanderheijden86/covtree/pkg/report"
)

// markdownReplacer escapes characters that break table cells.
var markdownReplacer = strings.NewReplacer(
	"|", "\\|",
	"\n", " ",
	"\r", "",
)

// GenerateMarkdown creates a markdown coverage summary: one table row per
// node in tree order, followed by a section for each class record.
func GenerateMarkdown(ds *model.Dataset, records map[string]*model.ClassCoverage, title string) (string, error) {
	exp := NewSQLiteExporter(ds, records)
	nodes, err := exp.ExportedNodes()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	sb.WriteString("| Package / class | Coverage | Band |\n")
	sb.WriteString("|-----------------|---------:|------|\n")
	for _, n := range nodes {
		label := markdownReplacer.Replace(n.Label)
		if n.Href != "" {
			label = fmt.Sprintf("[%s](%s)", label, n.Href)
		}
		indent := strings.Repeat("&nbsp;&nbsp;", n.Depth)
		coverage, band := "-", "-"
		if n.CoveragePct != nil {
			coverage = report.FormatPct(*n.CoveragePct)
			band = report.ColorClass(*n.CoveragePct)
		}
		sb.WriteString(fmt.Sprintf("| %s%s | %s | %s |\n", indent, label, coverage, band))
	}

	ids := make([]string, 0, len(records))
	for id, c := range records {
		if c != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := records[id]
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", markdownReplacer.Replace(c.Name)))
		sb.WriteString(fmt.Sprintf("`%s`: %d passed, %d failed, %d lines covered\n", id, c.PassCount(), c.FailCount(), c.CoveredLines()))
		if len(c.Tests) == 0 {
			continue
		}
		sb.WriteString("\n| Test | Result | Statements |\n")
		sb.WriteString("|------|--------|-----------:|\n")
		for _, testID := range c.SortedTestIDs() {
			t := c.Tests[testID]
			result := "fail"
			if t.Pass {
				result = "pass"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", markdownReplacer.Replace(t.Name), result, t.Statements))
		}
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the generated markdown to a file.
func SaveMarkdownToFile(ds *model.Dataset, records map[string]*model.ClassCoverage, title, filename string) error {
	content, err := GenerateMarkdown(ds, records, title)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
