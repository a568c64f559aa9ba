package pdftabular

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"

	"github.com/ivanvanderbyl/pdftabular/ocr"
)

// Mode selects what Process produces for a document.
type Mode int

const (
	// ModeText writes the document's plain text.
	ModeText Mode = iota
	// ModeCSV reconstructs tables and exports them as CSV.
	ModeCSV
	// ModeAnalyze prints the table analysis report without writing a table.
	ModeAnalyze
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeCSV:
		return "csv"
	case ModeAnalyze:
		return "analyze"
	default:
		return "unknown"
	}
}

// Extension returns the output file extension of the mode.
func (m Mode) Extension() string {
	switch m {
	case ModeCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// Extractor reads PDFs through a pdfium instance and runs the table
// pipeline over their text.
type Extractor struct {
	instance pdfium.Pdfium
	engine   ocr.Engine
	config   Config
	logger   *slog.Logger
}

// NewExtractor creates an extractor. The OCR engine named by the config is
// resolved here so a missing gosseract build fails before any page is read.
func NewExtractor(instance pdfium.Pdfium, config Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var engine ocr.Engine
	if config.UseOCR {
		var err error
		engine, err = ocr.New(config.OCREngine, config.TesseractCmd)
		if err != nil {
			return nil, err
		}
	}

	return &Extractor{
		instance: instance,
		engine:   engine,
		config:   config,
		logger:   config.logger(),
	}, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// LoadDocument opens a PDF and reads the text of every page. A missing path
// or a document without pages is fatal; page failures are recorded on the
// page and reading continues.
func (e *Extractor) LoadDocument(ctx context.Context, path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "input not readable")
	}

	openStart := time.Now()
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &path,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})
	openTime := time.Since(openStart)

	provider, err := NewPDFiumProvider(e.instance, doc.Document, e.engine, e.config)
	if err != nil {
		return nil, err
	}

	return readDocument(ctx, filepath.Base(path), provider, e.logger, openTime)
}

// ReadDocument reads every page from provider in order. It fails with
// ErrNoPages for an empty document and with ErrNoText, alongside the
// document read so far, when no page produced text.
func ReadDocument(ctx context.Context, name string, provider PageTextProvider, logger *slog.Logger) (*Document, error) {
	return readDocument(ctx, name, provider, logger, 0)
}

// readDocument is ReadDocument with the time spent opening the document,
// which is recorded in the metrics before they are logged.
func readDocument(ctx context.Context, name string, provider PageTextProvider, logger *slog.Logger, openTime time.Duration) (*Document, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	count := provider.PageCount()
	if count == 0 {
		return nil, errors.Wrap(ErrNoPages, name)
	}

	start := time.Now()
	doc := &Document{
		Name:  name,
		Pages: make([]Page, 0, count),
	}

	var pageMetrics []PageMetrics
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageStart := time.Now()
		text, source, err := provider.PageText(ctx, i)
		page := Page{Index: i, Text: text, Source: source, Err: err}
		if err != nil {
			page.Text = ""
			logger.Warn("page skipped", "document", name, "page", i+1, "error", err)
		}
		doc.Pages = append(doc.Pages, page)

		pageMetrics = append(pageMetrics, PageMetrics{
			PageNumber: i + 1,
			Source:     source,
			Chars:      len([]rune(page.Text)),
			Duration:   time.Since(pageStart),
			Failed:     err != nil,
		})
	}

	doc.Metrics = ProcessingMetrics{
		TotalTime:       openTime + time.Since(start),
		DocumentOpen:    openTime,
		PageExtractions: pageMetrics,
		Statistics:      calculateDocumentStatistics(doc),
	}
	logProcessingMetrics(logger, name, doc.Metrics)

	if doc.TextPages() == 0 {
		return doc, errors.Wrap(ErrNoText, name)
	}
	return doc, nil
}

// DocumentText joins the text of all pages, separated by a blank line.
func DocumentText(doc *Document) string {
	texts := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

// BuildTables tokenizes the document and reconstructs its tables: one table
// for the whole document, or one per readable page with ScopePage.
func BuildTables(doc *Document, config Config) []TableResult {
	opts := config.tableOptions()

	if config.Scope == ScopePage {
		var tables []TableResult
		for _, p := range doc.Pages {
			if p.Err != nil {
				continue
			}
			tables = append(tables, BuildTable(Tokenize(p.Text, p.Index, config.MinGap), p.Index, opts))
		}
		return tables
	}

	var lines []Line
	for _, p := range doc.Pages {
		lines = append(lines, Tokenize(p.Text, p.Index, config.MinGap)...)
	}
	return []TableResult{BuildTable(lines, -1, opts)}
}

// Tables reconstructs the tables of a loaded document.
func (e *Extractor) Tables(doc *Document) []TableResult {
	return BuildTables(doc, e.config)
}

// Analyze builds the analysis report of a loaded document.
func (e *Extractor) Analyze(doc *Document) Report {
	return NewReport(doc, e.Tables(doc))
}

// Result describes one processed document.
type Result struct {
	Input    string
	Document *Document
	Tables   []TableResult
	// Outputs lists the files written.
	Outputs []string
}

// Process runs one document through the pipeline for mode. Text and reports
// go to stdout unless output names a file; CSV output defaults to the PDF's
// name with a .csv extension in the working directory.
func (e *Extractor) Process(ctx context.Context, path string, mode Mode, output string, stdout io.Writer) (*Result, error) {
	doc, err := e.LoadDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	return Emit(doc, e.config, mode, path, output, stdout)
}

// Emit writes a loaded document in the form mode selects.
func Emit(doc *Document, config Config, mode Mode, path, output string, stdout io.Writer) (*Result, error) {
	result := &Result{Input: path, Document: doc}

	switch mode {
	case ModeText:
		text := DocumentText(doc)
		if output == "" {
			_, err := io.WriteString(stdout, text+"\n")
			return result, errors.Wrap(err, "failed to write text")
		}
		if err := writeFileAtomic(output, []byte(text)); err != nil {
			return result, err
		}
		result.Outputs = []string{output}

	case ModeCSV:
		if output == "" {
			output = stem(path) + ModeCSV.Extension()
		}
		result.Tables = BuildTables(doc, config)
		written, err := config.exporter().WriteTables(output, result.Tables)
		if err != nil {
			return result, err
		}
		result.Outputs = written

	case ModeAnalyze:
		result.Tables = BuildTables(doc, config)
		if err := NewReport(doc, result.Tables).Write(stdout, config.ReportFormat); err != nil {
			return result, err
		}

	default:
		return nil, errors.Errorf("unknown mode %d", mode)
	}

	return result, nil
}

// stem returns the file name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
