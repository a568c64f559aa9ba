//go:build !gosseract

package ocr

import "github.com/pkg/errors"

func newGosseractEngine() (Engine, error) {
	return nil, errors.Wrap(ErrEngineUnavailable, "gosseract support not enabled; rebuild with -tags gosseract")
}
