package pdftabular

import (
	"context"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"

	"github.com/ivanvanderbyl/pdftabular/ocr"
)

// PageTextProvider returns the text of each page of one open document.
//
// PageText fails with a *PageReadError when the page cannot be decoded or
// rasterised, and with an error wrapping ErrNoTextAvailable when the page has
// no native text and OCR is disabled.
type PageTextProvider interface {
	PageCount() int
	PageText(ctx context.Context, index int) (string, Source, error)
}

// PDFiumProvider reads native text through pdfium and falls back to OCR of
// a rendered page image when a page has none.
type PDFiumProvider struct {
	instance pdfium.Pdfium
	doc      references.FPDF_DOCUMENT
	count    int
	engine   ocr.Engine
	config   Config
}

// NewPDFiumProvider wraps an open document. engine may be nil, in which case
// pages without native text report ErrNoTextAvailable.
func NewPDFiumProvider(instance pdfium.Pdfium, doc references.FPDF_DOCUMENT, engine ocr.Engine, config Config) (*PDFiumProvider, error) {
	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}
	return &PDFiumProvider{
		instance: instance,
		doc:      doc,
		count:    pageCount.PageCount,
		engine:   engine,
		config:   config,
	}, nil
}

func (p *PDFiumProvider) PageCount() int {
	return p.count
}

// PageText returns the page's native text, or its OCR text when the native
// layer is empty.
func (p *PDFiumProvider) PageText(ctx context.Context, index int) (string, Source, error) {
	text, err := extractPageText(p.instance, p.doc, index)
	if err != nil {
		return "", SourceNative, &PageReadError{Page: index, Err: err}
	}
	if strings.TrimSpace(text) != "" {
		return text, SourceNative, nil
	}

	if !p.config.UseOCR || p.engine == nil {
		return "", SourceNative, errors.Wrapf(ErrNoTextAvailable, "page %d", index+1)
	}

	text, err = p.recognize(ctx, index)
	if err != nil {
		return "", SourceOCR, &PageReadError{Page: index, Err: err}
	}
	return text, SourceOCR, nil
}

// recognize renders the page and runs it through the OCR engine.
func (p *PDFiumProvider) recognize(ctx context.Context, index int) (string, error) {
	render, err := p.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: p.config.OCRDPI,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: p.doc,
				Index:    index,
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render page")
	}
	defer render.Cleanup()

	img, err := ocr.EncodeImage(render.Result.Image, p.config.OCRImageFormat)
	if err != nil {
		return "", err
	}

	text, err := p.engine.Recognize(ctx, ocr.Input{
		Image:     img,
		Format:    p.config.OCRImageFormat,
		DPI:       p.config.OCRDPI,
		Languages: p.config.OCRLanguages,
	})
	if err != nil {
		return "", errors.Wrapf(err, "%s OCR failed", p.engine.Name())
	}
	return text, nil
}
