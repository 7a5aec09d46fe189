// Package diff renders a positional, line-by-line comparison of two texts
// with a window of unchanged context around the differing region.
package diff

import (
	"fmt"
	"strings"
)

// DefaultContextLines is the number of unchanged lines shown around the
// first and last difference
const DefaultContextLines = 3

const (
	missingLine  = "<missing line>"
	fallbackText = "Files appear identical but comparison failed"
)

// LineType marks a rendered line
type LineType string

const (
	LineEqual    LineType = " "
	LineActual   LineType = "-"
	LineExpected LineType = "+"
)

// Line is one rendered row of a diff
type Line struct {
	Type LineType
	// Number is the 1-based line index shared by both texts
	Number int
	Text   string
	// Missing is set when the row stands in for an absent or empty line
	Missing bool
}

// String formats the line as "- %3d: text"
func (l Line) String() string {
	text := l.Text
	if l.Missing {
		text = missingLine
	}
	return fmt.Sprintf("%s %3d: %s", l.Type, l.Number, text)
}

// Report is a rendered diff. It is not modified after Render returns.
type Report struct {
	ActualLabel   string
	ExpectedLabel string

	Lines []Line

	ActualLineCount   int
	ExpectedLineCount int

	// Identical is set when no line differs; Lines is then empty
	Identical bool

	text string
}

// Header returns the three header lines
func (r *Report) Header() []string {
	return []string{
		"Content differs between files:",
		"  Actual:   " + r.ActualLabel,
		"  Expected: " + r.ExpectedLabel,
	}
}

// Summary returns the line count summary
func (r *Report) Summary() string {
	return fmt.Sprintf("Lines in actual: %d, Lines in expected: %d", r.ActualLineCount, r.ExpectedLineCount)
}

// String serializes the report
func (r *Report) String() string {
	if r.text == "" {
		r.text = r.format()
	}
	return r.text
}

func (r *Report) format() string {
	var b strings.Builder
	for _, h := range r.Header() {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if r.Identical {
		b.WriteString(fallbackText)
		return b.String()
	}

	for _, line := range r.Lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(r.Summary())
	return b.String()
}

// Renderer builds diff reports
type Renderer struct {
	// ContextLines is the unchanged context shown on each side of the
	// differing region; negative values mean none
	ContextLines int
}

// NewRenderer creates a renderer with the default context width
func NewRenderer() *Renderer {
	return &Renderer{ContextLines: DefaultContextLines}
}

// Render compares actual and expected position by position. A line that
// exists on one side only compares as the empty string, so an empty line
// and a missing line render the same way.
func (r *Renderer) Render(actual, expected, actualLabel, expectedLabel string) *Report {
	actualLines := strings.Split(actual, "\n")
	expectedLines := strings.Split(expected, "\n")

	report := &Report{
		ActualLabel:       actualLabel,
		ExpectedLabel:     expectedLabel,
		ActualLineCount:   len(actualLines),
		ExpectedLineCount: len(expectedLines),
	}

	maxLines := max(len(actualLines), len(expectedLines))

	firstDiff, lastDiff := -1, -1
	for i := 0; i < maxLines; i++ {
		if lineAt(actualLines, i) != lineAt(expectedLines, i) {
			if firstDiff == -1 {
				firstDiff = i
			}
			lastDiff = i
		}
	}

	if firstDiff == -1 {
		report.Identical = true
		report.text = report.format()
		return report
	}

	window := max(r.ContextLines, 0)
	start := max(0, firstDiff-window)
	end := min(maxLines-1, lastDiff+window)

	for i := start; i <= end; i++ {
		number := i + 1
		a := lineAt(actualLines, i)
		e := lineAt(expectedLines, i)

		if a == e {
			report.Lines = append(report.Lines, Line{Type: LineEqual, Number: number, Text: a})
			continue
		}

		if a != "" {
			report.Lines = append(report.Lines, Line{Type: LineActual, Number: number, Text: a})
		}
		if e != "" {
			report.Lines = append(report.Lines, Line{Type: LineExpected, Number: number, Text: e})
		}
		if a == "" {
			report.Lines = append(report.Lines, Line{Type: LineActual, Number: number, Missing: true})
		}
		if e == "" {
			report.Lines = append(report.Lines, Line{Type: LineExpected, Number: number, Missing: true})
		}
	}

	report.text = report.format()
	return report
}

// ContentDiff renders the diff of two texts with the default context
func ContentDiff(actual, expected, actualLabel, expectedLabel string) string {
	return NewRenderer().Render(actual, expected, actualLabel, expectedLabel).String()
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
