package pdftabular

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoTextAvailable is recorded for a page with no native text when OCR
	// is disabled.
	ErrNoTextAvailable = errors.New("no text available")

	// ErrNoTableDetected is returned by Analyze when the lines show no stable
	// column structure.
	ErrNoTableDetected = errors.New("no table detected")

	// ErrAmbiguousRow marks a line whose middle cells were blanked because
	// its tokens could not be placed unambiguously.
	ErrAmbiguousRow = errors.New("ambiguous row")

	// ErrNoPages is returned for a document that has zero pages.
	ErrNoPages = errors.New("document has no pages")

	// ErrNoText is returned when no page of a document produced any text.
	ErrNoText = errors.New("no page produced any text")
)

// PageReadError reports a page whose content could not be decoded or
// rasterised.
type PageReadError struct {
	Page int // 0-based page index
	Err  error
}

func (e *PageReadError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page+1, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PageReadError) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *PageReadError) Cause() error {
	return e.Err
}
