package pdftabular_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdftabular"
	"github.com/ivanvanderbyl/pdftabular/ocr"
)

func TestDefaultConfig(t *testing.T) {
	config := pdftabular.DefaultConfig()
	require.NoError(t, config.Validate())

	assert.True(t, config.UseOCR)
	assert.Equal(t, pdftabular.DefaultMinGap, config.MinGap)
	assert.Equal(t, pdftabular.DefaultBoundaryTolerance, config.BoundaryTolerance)
	assert.Equal(t, pdftabular.ScopeDocument, config.Scope)
	assert.Equal(t, 144, config.OCRDPI)
	assert.Equal(t, ocr.FormatPNG, config.OCRImageFormat)
	assert.True(t, config.IncludeSource)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pdftabular.Config)
	}{
		{"unknown engine", func(c *pdftabular.Config) { c.OCREngine = "abbyy" }},
		{"no languages", func(c *pdftabular.Config) { c.OCRLanguages = nil }},
		{"empty language", func(c *pdftabular.Config) { c.OCRLanguages = []string{""} }},
		{"dpi too low", func(c *pdftabular.Config) { c.OCRDPI = 10 }},
		{"dpi too high", func(c *pdftabular.Config) { c.OCRDPI = 5000 }},
		{"unknown image format", func(c *pdftabular.Config) { c.OCRImageFormat = "bmp" }},
		{"zero min gap", func(c *pdftabular.Config) { c.MinGap = 0 }},
		{"negative tolerance", func(c *pdftabular.Config) { c.BoundaryTolerance = -1 }},
		{"unknown scope", func(c *pdftabular.Config) { c.Scope = "table" }},
		{"unknown report format", func(c *pdftabular.Config) { c.ReportFormat = "xml" }},
		{"no workers", func(c *pdftabular.Config) { c.MaxConcurrentDocuments = 0 }},
		{"no instance timeout", func(c *pdftabular.Config) { c.InstanceTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := pdftabular.DefaultConfig()
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides only the keys present", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
min_gap: 3
scope: page
ocr_languages: [eng, deu]
include_source: false
`), 0o644))

		config := pdftabular.DefaultConfig()
		require.NoError(t, pdftabular.LoadConfigFile(path, &config))

		assert.Equal(t, 3, config.MinGap)
		assert.Equal(t, pdftabular.ScopePage, config.Scope)
		assert.Equal(t, []string{"eng", "deu"}, config.OCRLanguages)
		assert.False(t, config.IncludeSource)
		assert.True(t, config.UseOCR)
		assert.Equal(t, pdftabular.DefaultBoundaryTolerance, config.BoundaryTolerance)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ocr_dpi: 5\n"), 0o644))

		config := pdftabular.DefaultConfig()
		assert.Error(t, pdftabular.LoadConfigFile(path, &config))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_gap: [\n"), 0o644))

		config := pdftabular.DefaultConfig()
		assert.Error(t, pdftabular.LoadConfigFile(path, &config))
	})

	t.Run("missing file", func(t *testing.T) {
		config := pdftabular.DefaultConfig()
		assert.Error(t, pdftabular.LoadConfigFile(filepath.Join(dir, "nope.yaml"), &config))
	})
}
