package pdftabular

import (
	"fmt"
	"strings"
	"unicode"
)

// TableStructure is the output of Analyze: the inferred schema and the span
// of lines the table occupies.
type TableStructure struct {
	Schema ColumnSchema

	// Start and End delimit the table region as indices into the analysed
	// lines, End exclusive. The region runs from the first line holding the
	// modal token count to the last one, extended over directly following
	// lines of two or more tokens so short final rows are kept.
	Start int
	End   int

	// Header is the index of the line whose tokens named the columns, or -1.
	Header int

	// ModalLines is the number of lines whose token count equals the column
	// count.
	ModalLines int
}

// AnalyzerOptions tunes Analyze.
type AnalyzerOptions struct {
	// InferHeader takes column names from the first table line when it
	// has no digits and every later line of the modal token count does.
	InferHeader bool
}

// Analyze infers a column schema from tokenized lines. The column count is
// the most frequent token count among non-blank lines, considering only
// counts of two or more held by at least two lines; ties go to the larger
// count. It returns ErrNoTableDetected when no such count exists.
func Analyze(lines []Line, opts AnalyzerOptions) (TableStructure, error) {
	counts := make(map[int]int)
	nonBlank := 0
	for _, l := range lines {
		if l.IsBlank() {
			continue
		}
		nonBlank++
		counts[len(l.Tokens)]++
	}

	if nonBlank < 2 {
		return TableStructure{Header: -1}, ErrNoTableDetected
	}

	mode, freq := 0, 0
	for n, c := range counts {
		if n < 2 || c < 2 {
			continue
		}
		if c > freq || (c == freq && n > mode) {
			mode, freq = n, c
		}
	}
	if mode == 0 {
		return TableStructure{Header: -1}, ErrNoTableDetected
	}

	var modal []int
	for i, l := range lines {
		if len(l.Tokens) == mode {
			modal = append(modal, i)
		}
	}

	end := modal[len(modal)-1] + 1
	for end < len(lines) && len(lines[end].Tokens) >= 2 {
		end++
	}

	ts := TableStructure{
		Start:      modal[0],
		End:        end,
		Header:     -1,
		ModalLines: len(modal),
	}

	data := modal
	if opts.InferHeader && looksLikeHeader(lines, modal) {
		ts.Header = modal[0]
		data = modal[1:]
	}

	columns := make([]Column, mode)
	for c := range columns {
		columns[c].Left = -1
		for _, idx := range data {
			tok := lines[idx].Tokens[c]
			if columns[c].Left < 0 || tok.Start < columns[c].Left {
				columns[c].Left = tok.Start
			}
			if tok.End > columns[c].Right {
				columns[c].Right = tok.End
			}
		}
	}

	if ts.Header >= 0 {
		names := headerNames(lines[ts.Header].Tokens)
		for c := range columns {
			columns[c].Name = names[c]
		}
	} else {
		for c := range columns {
			columns[c].Name = defaultColumnName(c)
		}
	}

	ts.Schema = ColumnSchema{Columns: columns}
	return ts, nil
}

// looksLikeHeader reports whether the first modal line carries no digits
// while every later modal line does.
func looksLikeHeader(lines []Line, modal []int) bool {
	if len(modal) < 2 || hasDigit(lines[modal[0]]) {
		return false
	}
	for _, idx := range modal[1:] {
		if !hasDigit(lines[idx]) {
			return false
		}
	}
	return true
}

func hasDigit(l Line) bool {
	for _, tok := range l.Tokens {
		if strings.IndexFunc(tok.Text, unicode.IsDigit) >= 0 {
			return true
		}
	}
	return false
}

// headerNames turns header tokens into unique column names.
func headerNames(tokens []Token) []string {
	names := make([]string, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for i, tok := range tokens {
		name := strings.TrimSpace(tok.Text)
		if name == "" || seen[name] {
			name = defaultColumnName(i)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func defaultColumnName(i int) string {
	return fmt.Sprintf("column_%d", i+1)
}
