// Package ocr recognises text in rendered page images. Engines either run the
// tesseract binary or, when built with the "gosseract" tag, call libtesseract
// through gosseract:
//
//	go build -tags gosseract ./...
//
// Both need Tesseract installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"context"

	"github.com/pkg/errors"
)

// ErrEngineUnavailable is returned when the selected OCR engine cannot be
// run on this system.
var ErrEngineUnavailable = errors.New("OCR engine unavailable")

// ImageFormat is the encoding of an image handed to an engine.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatTIFF ImageFormat = "tiff"
)

// Input is one page image submitted for recognition.
type Input struct {
	// Image is the encoded image payload in Format.
	Image  []byte
	Format ImageFormat
	// DPI is the resolution the page was rendered at; zero means unknown.
	DPI int
	// Languages are tesseract language codes such as "eng" or "deu".
	Languages []string
}

// Engine turns a page image into plain text. Implementations keep runs of
// spaces between words so column layout survives recognition.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (string, error)
}

// Engine names accepted by New.
const (
	EngineCommand   = "command"
	EngineGosseract = "gosseract"
)

// New returns the engine with the given name. command overrides the
// tesseract binary of the command engine.
func New(name, command string) (Engine, error) {
	switch name {
	case "", EngineCommand:
		return NewCommandEngine(command), nil
	case EngineGosseract:
		return newGosseractEngine()
	default:
		return nil, errors.Errorf("unknown OCR engine %q", name)
	}
}
