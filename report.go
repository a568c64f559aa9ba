package pdftabular

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Report is the analysis summary printed by --analyze.
type Report struct {
	Document string        `json:"document" yaml:"document"`
	Pages    []PageReport  `json:"pages" yaml:"pages"`
	Tables   []TableReport `json:"tables" yaml:"tables"`
}

// PageReport records how each page's text was obtained.
type PageReport struct {
	Page   int    `json:"page" yaml:"page"`
	Source Source `json:"source" yaml:"source"`
	Chars  int    `json:"chars" yaml:"chars"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// TableReport summarises one table.
type TableReport struct {
	// Page is 1-based, or 0 for a document-wide table.
	Page           int            `json:"page,omitempty" yaml:"page,omitempty"`
	Status         string         `json:"status" yaml:"status"`
	TotalRows      int            `json:"total_rows" yaml:"total_rows"`
	AmbiguousRows  int            `json:"ambiguous_rows" yaml:"ambiguous_rows"`
	Columns        []ColumnReport `json:"columns" yaml:"columns"`
	CompletionRate float64        `json:"completion_rate" yaml:"completion_rate"`
}

// ColumnReport is the fill statistic of one column.
type ColumnReport struct {
	Name      string  `json:"name" yaml:"name"`
	Filled    int     `json:"filled" yaml:"filled"`
	FillRatio float64 `json:"fill_ratio" yaml:"fill_ratio"`
}

const statusDetected = "table detected"

// NewReport summarises a document and its tables.
func NewReport(doc *Document, tables []TableResult) Report {
	r := Report{Document: doc.Name}

	for _, p := range doc.Pages {
		pr := PageReport{Page: p.Index + 1, Source: p.Source, Chars: len([]rune(p.Text))}
		if p.Err != nil {
			pr.Error = p.Err.Error()
		}
		r.Pages = append(r.Pages, pr)
	}

	for _, t := range tables {
		tr := TableReport{
			Page:           t.Page + 1,
			Status:         statusDetected,
			TotalRows:      t.Analysis.TotalRows,
			AmbiguousRows:  t.Analysis.Ambiguous,
			CompletionRate: t.Analysis.CompletionRate(),
			Columns:        []ColumnReport{},
		}
		if t.Err != nil {
			tr.Status = t.Err.Error()
		}
		for i, c := range t.Analysis.Schema.Columns {
			tr.Columns = append(tr.Columns, ColumnReport{
				Name:      c.Name,
				Filled:    t.Analysis.Filled[i],
				FillRatio: t.Analysis.FillRatio[i],
			})
		}
		r.Tables = append(r.Tables, tr)
	}

	return r
}

// WriteText writes the report in the human-readable form.
func (r Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("Table Analysis: %s\n", r.Document)
	for _, p := range r.Pages {
		if p.Error != "" {
			ew.printf("  page %d: %s\n", p.Page, p.Error)
		}
	}

	for _, t := range r.Tables {
		if t.Page > 0 {
			ew.printf("Page %d\n", t.Page)
		}
		ew.printf("Status: %s\n", t.Status)
		ew.printf("Total rows: %d\n", t.TotalRows)
		if len(t.Columns) > 0 {
			ew.printf("Data completion:\n")
			for _, c := range t.Columns {
				ew.printf("  %s: %d/%d (%.1f%%)\n", c.Name, c.Filled, t.TotalRows, c.FillRatio*100)
			}
		}
		ew.printf("Overall completion rate: %.1f%%\n", t.CompletionRate*100)
		if t.AmbiguousRows > 0 {
			ew.printf("Ambiguous rows left for manual entry: %d\n", t.AmbiguousRows)
		}
	}

	return ew.err
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "failed to encode report")
}

// WriteYAML writes the report as YAML.
func (r Report) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	_, err = w.Write(data)
	return err
}

// Write writes the report in the named format: text, json or yaml.
func (r Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.WriteText(w)
	case "json":
		return r.WriteJSON(w)
	case "yaml":
		return r.WriteYAML(w)
	default:
		return errors.Errorf("unknown report format %q", format)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
