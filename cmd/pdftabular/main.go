package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdftabular"
	"github.com/ivanvanderbyl/pdftabular/ocr"
)

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pdftabular: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pdftabular",
		Usage:     "Extract text and tables from PDF files, with OCR for scanned pages",
		ArgsUsage: "<file.pdf | directory>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Reconstruct tables and export them as CSV",
			},
			&cli.BoolFlag{
				Name:  "analyze",
				Usage: "Print the table structure analysis without writing a table",
			},
			&cli.BoolFlag{
				Name:  "no-ocr",
				Usage: "Do not OCR pages without native text",
			},
			&cli.BoolFlag{
				Name:  "batch",
				Usage: "Process every PDF in the input directory",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, or output directory in batch mode",
			},
			&cli.StringFlag{
				Name:  "tesseract-cmd",
				Usage: "Path to the tesseract binary",
			},
			&cli.StringFlag{
				Name:  "ocr-engine",
				Usage: "OCR engine: command or gosseract",
			},
			&cli.StringSliceFlag{
				Name:  "ocr-lang",
				Usage: "Tesseract language code, repeatable",
			},
			&cli.IntFlag{
				Name:  "ocr-dpi",
				Usage: "Resolution pages are rendered at for OCR",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Infer tables per document or per page",
			},
			&cli.StringFlag{
				Name:  "report-format",
				Usage: "Analysis report format: text, json or yaml",
			},
			&cli.IntFlag{
				Name:  "min-gap",
				Usage: "Whitespace run length that separates cells",
			},
			&cli.IntFlag{
				Name:  "tolerance",
				Usage: "Column boundary slack, in characters, when merging cells",
			},
			&cli.BoolFlag{
				Name:  "no-header",
				Usage: "Always name columns column_N",
			},
			&cli.BoolFlag{
				Name:  "no-source",
				Usage: "Omit the source_page, source_line and raw_text columns",
			},
			&cli.BoolFlag{
				Name:  "bom",
				Usage: "Prefix CSV output with a UTF-8 byte order mark",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Documents processed concurrently in batch mode",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log per-page progress and ambiguous rows",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return errors.New("an input file or directory is required")
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mode := pdftabular.ModeText
	switch {
	case cmd.Bool("analyze"):
		mode = pdftabular.ModeAnalyze
	case cmd.Bool("csv"):
		mode = pdftabular.ModeCSV
	}

	info, err := os.Stat(input)
	if err != nil {
		return errors.Wrap(err, "input not found")
	}
	if cmd.Bool("batch") && !info.IsDir() {
		return errors.Errorf("%s is not a directory", input)
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  config.MaxConcurrentDocuments,
		MaxTotal: config.MaxConcurrentDocuments,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialise pdfium")
	}
	defer pool.Close()

	if info.IsDir() {
		return runBatch(ctx, cmd, pool, config, input, mode)
	}

	instance, err := pool.GetInstance(config.InstanceTimeout)
	if err != nil {
		return errors.Wrap(err, "failed to get pdfium instance")
	}
	defer instance.Close()

	extractor, err := pdftabular.NewExtractor(instance, config)
	if err != nil {
		return err
	}

	result, err := extractor.Process(ctx, input, mode, cmd.String("output"), cmd.Writer)
	if err != nil {
		return err
	}
	for _, path := range result.Outputs {
		config.Logger.Info("written", "path", path)
	}
	return nil
}

func runBatch(ctx context.Context, cmd *cli.Command, pool pdfium.Pool, config pdftabular.Config, dir string, mode pdftabular.Mode) error {
	batch := &pdftabular.Batch{Pool: pool, Config: config}
	results, err := batch.Run(ctx, dir, mode, cmd.String("output"))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.Errorf("no PDF files found in %s", dir)
	}

	if err := printResults(cmd.Writer, results, mode); err != nil {
		return err
	}

	if pdftabular.Succeeded(results) == 0 {
		return errors.Errorf("none of the %d documents could be processed", len(results))
	}
	return nil
}

// printResults lists each document's outputs, its report in analyze mode,
// or its failure.
func printResults(w io.Writer, results []pdftabular.BatchResult, mode pdftabular.Mode) error {
	for _, r := range results {
		if r.Err != nil {
			if _, err := fmt.Fprintf(w, "FAILED %s: %v\n", r.Input, r.Err); err != nil {
				return errors.Wrap(err, "failed to write results")
			}
			continue
		}
		if mode == pdftabular.ModeAnalyze {
			if _, err := w.Write(r.Report); err != nil {
				return errors.Wrap(err, "failed to write report")
			}
			continue
		}
		for _, out := range r.Outputs {
			if _, err := fmt.Fprintf(w, "%s -> %s\n", r.Input, out); err != nil {
				return errors.Wrap(err, "failed to write results")
			}
		}
	}
	return nil
}

// loadConfig layers the config file and then any flags that were set over
// the defaults.
func loadConfig(cmd *cli.Command) (pdftabular.Config, error) {
	config := pdftabular.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		if err := pdftabular.LoadConfigFile(path, &config); err != nil {
			return config, err
		}
	}

	if cmd.Bool("no-ocr") {
		config.UseOCR = false
	}
	if cmd.IsSet("tesseract-cmd") {
		config.TesseractCmd = cmd.String("tesseract-cmd")
	}
	if cmd.IsSet("ocr-engine") {
		config.OCREngine = cmd.String("ocr-engine")
	}
	if cmd.IsSet("ocr-lang") {
		config.OCRLanguages = cmd.StringSlice("ocr-lang")
	}
	if cmd.IsSet("ocr-dpi") {
		config.OCRDPI = cmd.Int("ocr-dpi")
	}
	if cmd.IsSet("scope") {
		config.Scope = pdftabular.Scope(cmd.String("scope"))
	}
	if cmd.IsSet("report-format") {
		config.ReportFormat = cmd.String("report-format")
	}
	if cmd.IsSet("min-gap") {
		config.MinGap = cmd.Int("min-gap")
	}
	if cmd.IsSet("tolerance") {
		config.BoundaryTolerance = cmd.Int("tolerance")
	}
	if cmd.Bool("no-header") {
		config.InferHeader = false
	}
	if cmd.Bool("no-source") {
		config.IncludeSource = false
	}
	if cmd.Bool("bom") {
		config.UTF8BOM = true
	}
	if cmd.IsSet("jobs") {
		config.MaxConcurrentDocuments = cmd.Int("jobs")
	}
	if config.OCREngine == "" {
		config.OCREngine = ocr.EngineCommand
	}

	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	config.Logger = slog.New(slog.NewTextHandler(cmd.ErrWriter, &slog.HandlerOptions{Level: level}))

	return config, config.Validate()
}
