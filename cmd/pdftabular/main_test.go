package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdftabular"
)

// parseConfig runs the command with args and returns the configuration its
// flags produce.
func parseConfig(t *testing.T, args ...string) (pdftabular.Config, error) {
	t.Helper()

	var config pdftabular.Config
	var stdout, stderr bytes.Buffer
	cmd := newCommand(&stdout, &stderr)
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		var err error
		config, err = loadConfig(c)
		return err
	}

	err := cmd.Run(context.Background(), append([]string{"pdftabular"}, args...))
	return config, err
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := parseConfig(t, "invoice.pdf")
	require.NoError(t, err)

	want := pdftabular.DefaultConfig()
	assert.Equal(t, want.UseOCR, config.UseOCR)
	assert.Equal(t, want.MinGap, config.MinGap)
	assert.Equal(t, want.OCRLanguages, config.OCRLanguages)
	assert.NotNil(t, config.Logger)
}

func TestLoadConfig_Flags(t *testing.T) {
	config, err := parseConfig(t,
		"--no-ocr",
		"--tesseract-cmd", "/usr/local/bin/tesseract",
		"--ocr-lang", "eng",
		"--ocr-lang", "deu",
		"--ocr-dpi", "300",
		"--scope", "page",
		"--min-gap", "3",
		"--tolerance", "4",
		"--no-header",
		"--no-source",
		"--bom",
		"-j", "4",
		"invoice.pdf",
	)
	require.NoError(t, err)

	assert.False(t, config.UseOCR)
	assert.Equal(t, "/usr/local/bin/tesseract", config.TesseractCmd)
	assert.Equal(t, []string{"eng", "deu"}, config.OCRLanguages)
	assert.Equal(t, 300, config.OCRDPI)
	assert.Equal(t, pdftabular.ScopePage, config.Scope)
	assert.Equal(t, 3, config.MinGap)
	assert.Equal(t, 4, config.BoundaryTolerance)
	assert.False(t, config.InferHeader)
	assert.False(t, config.IncludeSource)
	assert.True(t, config.UTF8BOM)
	assert.Equal(t, 4, config.MaxConcurrentDocuments)
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdftabular.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_gap: 4\nscope: page\n"), 0o644))

	config, err := parseConfig(t, "--config", path, "--min-gap", "3", "invoice.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, config.MinGap, "flags win over the file")
	assert.Equal(t, pdftabular.ScopePage, config.Scope)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := parseConfig(t, "--scope", "table", "invoice.pdf")
	assert.Error(t, err)
}

func TestRun_InputErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := newCommand(&stdout, &stderr).Run(context.Background(), []string{"pdftabular"})
	assert.ErrorContains(t, err, "input file or directory is required")

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	err = newCommand(&stdout, &stderr).Run(context.Background(), []string{"pdftabular", "--csv", missing})
	assert.ErrorContains(t, err, "input not found")

	file := filepath.Join(t.TempDir(), "single.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = newCommand(&stdout, &stderr).Run(context.Background(), []string{"pdftabular", "--batch", file})
	assert.ErrorContains(t, err, "is not a directory")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrintResults(t *testing.T) {
	results := []pdftabular.BatchResult{
		{Input: "a.pdf", Outputs: []string{"out/a.csv"}, Report: []byte("Table Analysis: a.pdf\n")},
		{Input: "b.pdf", Err: errors.New("broken")},
	}

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printResults(&buf, results, pdftabular.ModeCSV))
		assert.Equal(t, "a.pdf -> out/a.csv\nFAILED b.pdf: broken\n", buf.String())
	})

	t.Run("analyze", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printResults(&buf, results, pdftabular.ModeAnalyze))
		assert.Equal(t, "Table Analysis: a.pdf\nFAILED b.pdf: broken\n", buf.String())
	})

	t.Run("write errors are returned", func(t *testing.T) {
		err := printResults(failingWriter{}, results[:1], pdftabular.ModeAnalyze)
		assert.ErrorContains(t, err, "failed to write report")
		assert.ErrorContains(t, err, "disk full")
	})
}
