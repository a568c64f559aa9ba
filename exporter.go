package pdftabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Verification column names appended after the schema columns.
const (
	SourcePageColumn = "source_page"
	SourceLineColumn = "source_line"
	RawTextColumn    = "raw_text"
)

// Exporter writes reconciled rows as CSV. Blank cells are written as empty
// fields and quoting follows RFC 4180.
type Exporter struct {
	// IncludeSource appends source_page, source_line and raw_text to every
	// record so values can be checked against the page.
	IncludeSource bool

	// UTF8BOM prefixes the output with a byte order mark for spreadsheet
	// applications that need one to detect UTF-8.
	UTF8BOM bool
}

// Write writes the header and one record per row. Without a schema the rows
// carry no cells, so the source columns are always written and the raw text
// survives whatever IncludeSource says.
func (e Exporter) Write(w io.Writer, schema ColumnSchema, rows []Row) error {
	includeSource := e.IncludeSource || schema.Len() == 0

	var closer io.Closer
	if e.UTF8BOM {
		tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		w, closer = tw, tw
	}

	cw := csv.NewWriter(w)
	header := schema.Names()
	if includeSource {
		header = append(header, SourcePageColumn, SourceLineColumn, RawTextColumn)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for _, row := range rows {
		if len(row.Cells) != schema.Len() {
			return errors.Errorf("row on page %d line %d has %d cells, schema has %d",
				row.Page+1, row.LineNumber, len(row.Cells), schema.Len())
		}
		record := row.Values()
		if includeSource {
			record = append(record,
				strconv.Itoa(row.Page+1),
				strconv.Itoa(row.LineNumber),
				row.Raw)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write page %d line %d", row.Page+1, row.LineNumber)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "failed to flush csv")
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}

// WriteTables writes each table to its own file and returns the paths
// written. A single table goes to path; several tables go to path with
// "_page<N>" inserted before the extension. Either every file is written or
// none is: a failed rename removes the files this call already moved into
// place.
func (e Exporter) WriteTables(path string, tables []TableResult) ([]string, error) {
	type pending struct{ tmp, dest string }
	var staged []pending

	cleanup := func() {
		for _, p := range staged {
			os.Remove(p.tmp)
		}
	}

	for _, t := range tables {
		dest := path
		if len(tables) > 1 {
			dest = pagePath(path, t.Page)
		}
		tmp, err := e.stage(dest, t)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, pending{tmp: tmp, dest: dest})
	}

	written := make([]string, 0, len(staged))
	for i, p := range staged {
		if err := os.Rename(p.tmp, p.dest); err != nil {
			for _, dest := range written {
				os.Remove(dest)
			}
			staged = staged[i:]
			cleanup()
			return nil, errors.Wrapf(err, "failed to move output into place at %s", p.dest)
		}
		written = append(written, p.dest)
	}
	return written, nil
}

// stage writes a table to a temporary file beside dest.
func (e Exporter) stage(dest string, t TableResult) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary output file")
	}
	if err := e.Write(f, t.Analysis.Schema, t.Rows); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "failed to close temporary output file")
	}
	return f.Name(), nil
}

// pagePath inserts a page suffix before the extension of path.
func pagePath(path string, page int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if page < 0 {
		return path
	}
	return base + "_page" + strconv.Itoa(page+1) + ext
}

// writeFileAtomic writes data to path through a temporary file and rename.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary output file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to write output")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to close temporary output file")
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return errors.Wrapf(err, "failed to move output into place at %s", path)
	}
	return nil
}
