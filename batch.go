package pdftabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome for one document of a batch.
type BatchResult struct {
	Input   string
	Outputs []string
	// Report holds the rendered analysis report in ModeAnalyze.
	Report []byte
	Err    error
}

// Batch processes every PDF of a directory. Documents are independent and
// run concurrently up to Config.MaxConcurrentDocuments, each on its own
// pdfium instance taken from Pool.
type Batch struct {
	Pool   pdfium.Pool
	Config Config
}

// Run processes the PDFs in dir and writes outputs into outDir, which
// defaults to "<dir>_extracted". Results are in file name order. A failure
// of one document never stops the others; Run itself only fails when the
// directory cannot be listed or the output directory created.
func (b *Batch) Run(ctx context.Context, dir string, mode Mode, outDir string) ([]BatchResult, error) {
	if err := b.Config.Validate(); err != nil {
		return nil, err
	}

	inputs, err := ListPDFs(dir)
	if err != nil {
		return nil, err
	}

	if outDir == "" {
		outDir = filepath.Clean(dir) + "_extracted"
	}
	if mode != ModeAnalyze {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create output directory")
		}
	}

	logger := b.Config.logger()
	results := make([]BatchResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(b.Config.MaxConcurrentDocuments)
	for i, input := range inputs {
		g.Go(func() error {
			results[i] = b.process(ctx, input, mode, outDir)
			if err := results[i].Err; err != nil {
				logger.Error("document failed", "document", input, "error", err)
			} else {
				logger.Info("document processed", "document", input, "outputs", results[i].Outputs)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (b *Batch) process(ctx context.Context, input string, mode Mode, outDir string) BatchResult {
	result := BatchResult{Input: input}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	instance, err := b.Pool.GetInstance(b.Config.InstanceTimeout)
	if err != nil {
		result.Err = errors.Wrap(err, "failed to get pdfium instance")
		return result
	}
	defer instance.Close()

	config := b.Config
	config.Logger = b.Config.logger().With("document", filepath.Base(input))

	extractor, err := NewExtractor(instance, config)
	if err != nil {
		result.Err = err
		return result
	}

	var report bytes.Buffer
	output := ""
	if mode != ModeAnalyze {
		output = filepath.Join(outDir, stem(input)+mode.Extension())
	}

	r, err := extractor.Process(ctx, input, mode, output, &report)
	if r != nil {
		result.Outputs = r.Outputs
	}
	result.Report = report.Bytes()
	result.Err = err
	return result
}

// ListPDFs returns the PDF files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input directory")
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Succeeded counts the results without an error.
func Succeeded(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
