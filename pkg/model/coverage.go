package model

import "sort"

// MethodRange is the line span of one method inside a class.
type MethodRange struct {
	StartLine int `json:"sl"`
	EndLine   int `json:"el"`
}

// TestRecord describes one test that executed code in a class.
type TestRecord struct {
	Methods    int    `json:"methods"`    // Methods of the class the test hit
	Name       string `json:"name"`       // Test display name
	Pass       bool   `json:"pass"`       // Did the test pass?
	Statements int    `json:"statements"` // Statements of the class the test hit
}

// ClassCoverage is the per-class test-to-statement mapping written by the
// coverage generator. It is read-only input for the detail views and export.
//
// SrcFileLines is indexed by zero-based source line; each entry lists the ids
// of the tests that covered that line.
type ClassCoverage struct {
	Name         string                `json:"name"`
	ID           string                `json:"id"`
	StartLine    int                   `json:"sl"`
	EndLine      int                   `json:"el"`
	Methods      []MethodRange         `json:"methods"`
	Tests        map[string]TestRecord `json:"tests"`
	SrcFileLines [][]string            `json:"srcFileLines"`
}

// TestsForLine returns the tests covering the given 1-based source line,
// sorted by test name. Out-of-range lines have no tests.
func (c *ClassCoverage) TestsForLine(line int) []TestRecord {
	if c == nil || line < 1 || line > len(c.SrcFileLines) {
		return nil
	}
	var out []TestRecord
	for _, testID := range c.SrcFileLines[line-1] {
		if rec, ok := c.Tests[testID]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PassCount returns the number of passing tests.
func (c *ClassCoverage) PassCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, t := range c.Tests {
		if t.Pass {
			n++
		}
	}
	return n
}

// FailCount returns the number of failing tests.
func (c *ClassCoverage) FailCount() int {
	if c == nil {
		return 0
	}
	return len(c.Tests) - c.PassCount()
}

// CoveredLines returns how many source lines at least one test covered.
func (c *ClassCoverage) CoveredLines() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, tests := range c.SrcFileLines {
		if len(tests) > 0 {
			n++
		}
	}
	return n
}

// SortedTestIDs returns the test ids ordered by test name, then id.
func (c *ClassCoverage) SortedTestIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Tests))
	for id := range c.Tests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.Tests[ids[i]], c.Tests[ids[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return ids[i] < ids[j]
	})
	return ids
}
