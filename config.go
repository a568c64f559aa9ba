package pdftabular

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	"github.com/ivanvanderbyl/pdftabular/ocr"
)

// Scope selects whether tables are inferred once per document or per page.
type Scope string

const (
	ScopeDocument Scope = "document"
	ScopePage     Scope = "page"
)

// Config controls extraction, table reconstruction and export. It is passed
// explicitly to every component; nothing reads process-wide state.
type Config struct {
	// UseOCR enables the OCR fallback for pages without native text. When
	// false such pages are recorded with ErrNoTextAvailable (default: true)
	UseOCR bool `yaml:"use_ocr"`

	// OCREngine selects the OCR backend: "command" runs the tesseract binary,
	// "gosseract" uses libtesseract and needs the gosseract build tag.
	OCREngine string `yaml:"ocr_engine" validate:"oneof=command gosseract"`

	// TesseractCmd overrides the tesseract binary used by the command engine.
	TesseractCmd string `yaml:"tesseract_cmd"`

	OCRLanguages   []string        `yaml:"ocr_languages" validate:"min=1,dive,required"`
	OCRDPI         int             `yaml:"ocr_dpi" validate:"min=72,max=1200"`
	OCRImageFormat ocr.ImageFormat `yaml:"ocr_image_format" validate:"oneof=png tiff"`

	// MinGap is the whitespace run length that splits tokens (default: 2)
	MinGap int `yaml:"min_gap" validate:"min=1,max=16"`

	// BoundaryTolerance widens each column's span when merging surplus
	// tokens on over-long lines (default: 2)
	BoundaryTolerance int `yaml:"boundary_tolerance" validate:"min=0,max=40"`

	// InferHeader names columns from a header row when one is found (default: true)
	InferHeader bool `yaml:"infer_header"`

	Scope Scope `yaml:"scope" validate:"oneof=document page"`

	// IncludeSource appends page, line and raw text columns to CSV output (default: true)
	IncludeSource bool `yaml:"include_source"`
	UTF8BOM       bool `yaml:"utf8_bom"`

	// ReportFormat is the --analyze output format: text, json or yaml.
	ReportFormat string `yaml:"report_format" validate:"oneof=text json yaml"`

	// MaxConcurrentDocuments bounds batch parallelism (default: 1)
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" validate:"min=1,max=32"`

	// InstanceTimeout bounds the wait for a pdfium instance from the pool.
	InstanceTimeout time.Duration `yaml:"instance_timeout" validate:"required"`

	Logger *slog.Logger `yaml:"-" validate:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		UseOCR:                 true,
		OCREngine:              "command",
		OCRLanguages:           []string{"eng"},
		OCRDPI:                 144,
		OCRImageFormat:         ocr.FormatPNG,
		MinGap:                 DefaultMinGap,
		BoundaryTolerance:      DefaultBoundaryTolerance,
		InferHeader:            true,
		Scope:                  ScopeDocument,
		IncludeSource:          true,
		ReportFormat:           "text",
		MaxConcurrentDocuments: 1,
		InstanceTimeout:        30 * time.Second,
	}
}

// Validate checks the configuration against its constraints.
func (cfg *Config) Validate() error {
	validate := validator.New()
	return errors.Wrap(validate.Struct(cfg), "invalid configuration")
}

// LoadConfigFile decodes a YAML file over cfg, so keys absent from the file
// keep their current values, then validates the result.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg.Validate()
}

func (cfg *Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (cfg *Config) tableOptions() TableOptions {
	return TableOptions{
		InferHeader:       cfg.InferHeader,
		BoundaryTolerance: cfg.BoundaryTolerance,
		Logger:            cfg.logger(),
	}
}

func (cfg *Config) exporter() Exporter {
	return Exporter{IncludeSource: cfg.IncludeSource, UTF8BOM: cfg.UTF8BOM}
}
