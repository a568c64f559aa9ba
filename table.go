package pdftabular

import (
	"context"
	"log/slog"
)

// TableOptions configures BuildTable.
type TableOptions struct {
	InferHeader       bool
	BoundaryTolerance int
	Logger            *slog.Logger
}

// TableResult is one analysed and reconciled table.
type TableResult struct {
	// Page is the 0-based page index for page-scoped tables, or -1 when the
	// table spans the whole document.
	Page      int
	Structure TableStructure
	Rows      []Row
	Analysis  TableAnalysis

	// Err is ErrNoTableDetected when no schema could be inferred. Rows then
	// hold the source text of every non-blank line and no cells.
	Err error
}

// Detected reports whether a column schema was found.
func (t TableResult) Detected() bool {
	return t.Err == nil
}

// BuildTable runs the analyzer over lines and reconciles every non-blank line
// of the detected region, skipping the header line. Lines outside the region
// are treated as header or footer noise.
func BuildTable(lines []Line, page int, opts TableOptions) TableResult {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := TableResult{Page: page}
	ts, err := Analyze(lines, AnalyzerOptions{InferHeader: opts.InferHeader})
	result.Structure = ts
	if err != nil {
		result.Err = err
		for _, l := range lines {
			if !l.IsBlank() {
				result.Rows = append(result.Rows, Reconcile(ColumnSchema{}, l, opts.BoundaryTolerance))
			}
		}
		result.Analysis = NewTableAnalysis(ColumnSchema{}, result.Rows)
		return result
	}

	if ts.Header >= 0 {
		h := lines[ts.Header]
		logger.LogAttrs(context.Background(), slog.LevelDebug, "header inferred",
			slog.Int("page", h.Page+1),
			slog.Int("line", h.Number),
			slog.Any("columns", ts.Schema.Names()),
			slog.String("raw", h.Text))
	}

	for i := ts.Start; i < ts.End; i++ {
		l := lines[i]
		if l.IsBlank() || i == ts.Header {
			continue
		}
		row := Reconcile(ts.Schema, l, opts.BoundaryTolerance)
		if row.Ambiguous() {
			logger.LogAttrs(context.Background(), slog.LevelDebug, ErrAmbiguousRow.Error(),
				slog.Int("page", l.Page+1),
				slog.Int("line", l.Number),
				slog.Int("tokens", len(l.Tokens)),
				slog.Int("columns", ts.Schema.Len()),
				slog.String("raw", l.Text))
		}
		result.Rows = append(result.Rows, row)
	}

	result.Analysis = NewTableAnalysis(ts.Schema, result.Rows)
	return result
}

// NewTableAnalysis computes row count and per-column fill ratios. A column's
// fill ratio is the fraction of rows in which it is non-blank.
func NewTableAnalysis(schema ColumnSchema, rows []Row) TableAnalysis {
	a := TableAnalysis{
		Schema:    schema,
		TotalRows: len(rows),
		Filled:    make([]int, schema.Len()),
		FillRatio: make([]float64, schema.Len()),
	}

	for _, row := range rows {
		if row.Ambiguous() {
			a.Ambiguous++
		}
		for i, c := range row.Cells {
			if i < len(a.Filled) && c.Confidence == Filled && c.Value != "" {
				a.Filled[i]++
			}
		}
	}

	if a.TotalRows > 0 {
		for i, f := range a.Filled {
			a.FillRatio[i] = float64(f) / float64(a.TotalRows)
		}
	}
	return a
}

// CompletionRate is the mean fill ratio across columns.
func (a TableAnalysis) CompletionRate() float64 {
	if len(a.FillRatio) == 0 {
		return 0
	}
	var sum float64
	for _, r := range a.FillRatio {
		sum += r
	}
	return sum / float64(len(a.FillRatio))
}
