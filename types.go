package pdftabular

import (
	"fmt"
	"strings"
)

// Rect represents a bounding box in page coordinates with the origin at the
// top-left corner.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top (after conversion from PDF coordinates)
	X1 float64 // Right
	Y1 float64 // Bottom (after conversion from PDF coordinates)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Char is a single positioned character read from a page's text layer.
type Char struct {
	Text     rune
	Box      Rect
	FontSize float64
}

// Source records where a page's text came from.
type Source int

const (
	SourceNative Source = iota
	SourceOCR
)

func (s Source) String() string {
	switch s {
	case SourceNative:
		return "native"
	case SourceOCR:
		return "ocr"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Page is one page of a loaded document. Err is set when the page produced
// no text; it is a *PageReadError or wraps ErrNoTextAvailable.
type Page struct {
	Index  int
	Text   string
	Source Source
	Err    error
}

// Document is the ordered set of pages read from one PDF. It is not modified
// after ReadDocument returns.
type Document struct {
	Name    string
	Pages   []Page
	Metrics ProcessingMetrics
}

// TextPages returns the number of pages that produced any text.
func (d *Document) TextPages() int {
	n := 0
	for _, p := range d.Pages {
		if p.Err == nil && strings.TrimSpace(p.Text) != "" {
			n++
		}
	}
	return n
}

// Token is a run of characters within a line that is a candidate table cell.
// Start and End are rune offsets into the line, End exclusive.
type Token struct {
	Text  string `json:"text" yaml:"text"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Line is one line of page text together with its tokens.
type Line struct {
	Page   int // 0-based page index
	Number int // 1-based line number within the page
	Text   string
	Tokens []Token
}

// IsBlank reports whether the line holds no tokens.
func (l Line) IsBlank() bool {
	return len(l.Tokens) == 0
}

// Slice returns the verbatim text between two rune offsets of the line.
func (l Line) Slice(start, end int) string {
	runes := []rune(l.Text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// Column is one column of an inferred table. Left is the smallest start
// offset observed for the column and Right the largest end offset.
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Left  int    `json:"left" yaml:"left"`
	Right int    `json:"right" yaml:"right"`
}

// ColumnSchema is the ordered set of columns of a table.
type ColumnSchema struct {
	Columns []Column
}

// Len returns the number of columns.
func (s ColumnSchema) Len() int {
	return len(s.Columns)
}

// Names returns the column names in schema order.
func (s ColumnSchema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// nearest returns the column whose left boundary is closest to offset.
// Ties go to the lower-indexed column.
func (s ColumnSchema) nearest(offset int) int {
	best, bestDist := -1, 0
	for i, c := range s.Columns {
		d := offset - c.Left
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Confidence describes how a cell got its value.
type Confidence int

const (
	Filled Confidence = iota
	BlankLowConfidence
	BlankNoToken
)

func (c Confidence) String() string {
	switch c {
	case Filled:
		return "filled"
	case BlankLowConfidence:
		return "blank-low-confidence"
	case BlankNoToken:
		return "blank-no-token"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Cell is one value of a row. Value is empty unless Confidence is Filled.
type Cell struct {
	Value      string     `json:"value" yaml:"value"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// MatchKind records which reconciliation path produced a row.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchUnder
	MatchMerged
	MatchAmbiguous
	MatchRaw // no schema; the row carries only its source text
)

func (m MatchKind) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchUnder:
		return "under"
	case MatchMerged:
		return "merged"
	case MatchAmbiguous:
		return "ambiguous"
	case MatchRaw:
		return "raw"
	default:
		return fmt.Sprintf("match(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchKind) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Row is the reconciled form of one line. It always has one cell per schema
// column. Raw holds the source line verbatim and Unassigned lists the tokens
// that were left out of every cell.
type Row struct {
	Cells      []Cell    `json:"cells" yaml:"cells"`
	Match      MatchKind `json:"match" yaml:"match"`
	Page       int       `json:"page" yaml:"page"`
	LineNumber int       `json:"line" yaml:"line"`
	Raw        string    `json:"raw" yaml:"raw"`
	Unassigned []Token   `json:"unassigned,omitempty" yaml:"unassigned,omitempty"`
}

// Values returns the cell values in schema order.
func (r Row) Values() []string {
	values := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		values[i] = c.Value
	}
	return values
}

// Map returns the row as a column name to value mapping.
func (r Row) Map(schema ColumnSchema) map[string]string {
	m := make(map[string]string, len(r.Cells))
	for i, c := range r.Cells {
		if i < schema.Len() {
			m[schema.Columns[i].Name] = c.Value
		}
	}
	return m
}

// Ambiguous reports whether the row fell back to conservative blanking.
func (r Row) Ambiguous() bool {
	return r.Match == MatchAmbiguous
}

// TableAnalysis summarises a reconciled table.
type TableAnalysis struct {
	Schema    ColumnSchema
	TotalRows int
	Filled    []int
	FillRatio []float64
	Ambiguous int
}
