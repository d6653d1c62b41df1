package report

import (
	"strings"

	"github.com/vanderheijden86/covtree/pkg/model"
)

type testRow struct {
	ID         string
	Name       string
	Pass       bool
	Methods    int
	Statements int
}

type lineRow struct {
	Number int
	Tests  int
	Names  string
}

// classView is the template-facing summary of one class record.
type classView struct {
	Name      string
	ID        string
	StartLine int
	EndLine   int
	Methods   []model.MethodRange
	Tests     []testRow
	Lines     []lineRow
	Pass      int
	Fail      int
	Covered   int
	Total     int
	Pct       float64
}

func newClassView(c *model.ClassCoverage) *classView {
	if c == nil {
		return nil
	}
	v := &classView{
		Name:      c.Name,
		ID:        c.ID,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
		Methods:   c.Methods,
		Pass:      c.PassCount(),
		Fail:      c.FailCount(),
	}
	for _, id := range c.SortedTestIDs() {
		t := c.Tests[id]
		v.Tests = append(v.Tests, testRow{
			ID:         id,
			Name:       t.Name,
			Pass:       t.Pass,
			Methods:    t.Methods,
			Statements: t.Statements,
		})
	}

	first, last := c.StartLine, c.EndLine
	if first < 1 {
		first = 1
	}
	if last < first || last > len(c.SrcFileLines) {
		last = len(c.SrcFileLines)
	}
	for line := first; line <= last; line++ {
		tests := c.TestsForLine(line)
		names := make([]string, len(tests))
		for i, t := range tests {
			names[i] = t.Name
		}
		v.Lines = append(v.Lines, lineRow{Number: line, Tests: len(tests), Names: strings.Join(names, ", ")})
		v.Total++
		if len(tests) > 0 {
			v.Covered++
		}
	}
	if v.Total > 0 {
		v.Pct = float64(v.Covered) / float64(v.Total) * 100
	}
	return v
}
