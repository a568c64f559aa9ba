package pdftabular

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"
)

const (
	defaultCharWidth  = 5.0
	defaultLineHeight = 6.0

	// Gaps are measured in median character widths.
	joinGap  = 0.3
	spaceGap = 1.5

	// A baseline step this many times the median line spacing leaves a blank
	// line in the output.
	paragraphGap = 1.8
)

// layoutText renders positioned characters as plain text in which horizontal
// position is kept: characters are grouped into lines by baseline and wide
// gaps become runs of at least two spaces aligned to a character grid. Two
// cells of the same column therefore start at about the same offset on every
// line.
func layoutText(chars []Char) string {
	glyphs := make([]Char, 0, len(chars))
	for _, c := range chars {
		if unicode.IsSpace(c.Text) || unicode.IsControl(c.Text) {
			continue
		}
		glyphs = append(glyphs, c)
	}
	if len(glyphs) == 0 {
		return ""
	}

	cw := median(glyphs, func(c Char) float64 { return c.Box.Width() }, defaultCharWidth)
	minX := glyphs[0].Box.X0
	for _, c := range glyphs {
		minX = math.Min(minX, c.Box.X0)
	}

	lines := groupCharsIntoLines(glyphs)
	spacing := lineSpacing(lines)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
			if line[0].Box.Y1-lines[i-1][0].Box.Y1 > spacing*paragraphGap {
				b.WriteByte('\n')
			}
		}
		writeLine(&b, line, minX, cw)
	}
	return b.String()
}

// groupCharsIntoLines groups characters sharing a baseline, top to bottom,
// each line ordered left to right.
func groupCharsIntoLines(chars []Char) [][]Char {
	sorted := slices.Clone(chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Y1 != sorted[j].Box.Y1 {
			return sorted[i].Box.Y1 < sorted[j].Box.Y1
		}
		return sorted[i].Box.X0 < sorted[j].Box.X0
	})

	threshold := median(sorted, func(c Char) float64 { return c.Box.Height() }, defaultLineHeight) * 0.5

	var lines [][]Char
	var current []Char
	baseline := 0.0
	for _, c := range sorted {
		if len(current) > 0 && math.Abs(c.Box.Y1-baseline) > threshold {
			lines = append(lines, current)
			current = nil
		}
		if len(current) == 0 {
			baseline = c.Box.Y1
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].Box.X0 < line[j].Box.X0
		})
	}
	return lines
}

// writeLine writes one line, padding each character to its grid column when
// it follows a wide gap.
func writeLine(b *strings.Builder, line []Char, minX, cw float64) {
	cursor := 0
	for i, c := range line {
		target := int(math.Round((c.Box.X0 - minX) / cw))

		pad := target
		if i > 0 {
			gap := c.Box.X0 - line[i-1].Box.X1
			switch {
			case gap <= cw*joinGap:
				pad = 0
			case gap < cw*spaceGap:
				pad = 1
			default:
				pad = max(2, target-cursor)
			}
		}
		if pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
			cursor += pad
		}

		text := expandLigature(c.Text)
		b.WriteString(text)
		cursor += len([]rune(text))
	}
}

// lineSpacing is the median distance between consecutive baselines.
func lineSpacing(lines [][]Char) float64 {
	if len(lines) < 2 {
		return math.Inf(1)
	}
	gaps := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i][0].Box.Y1-lines[i-1][0].Box.Y1)
	}
	slices.Sort(gaps)
	return gaps[len(gaps)/2]
}

// median returns the median of a positive per-character measure, or def when
// no character has one.
func median(chars []Char, measure func(Char) float64, def float64) float64 {
	values := make([]float64, 0, len(chars))
	for _, c := range chars {
		if v := measure(c); v > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return def
	}
	slices.Sort(values)
	return values[len(values)/2]
}
