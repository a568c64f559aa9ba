//go:build gosseract

package ocr

import (
	"context"
	"strconv"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// GosseractEngine recognises text through libtesseract.
type GosseractEngine struct {
	// TessdataPrefix overrides the directory holding trained data.
	TessdataPrefix string
}

func newGosseractEngine() (Engine, error) {
	return &GosseractEngine{}, nil
}

func (e *GosseractEngine) Name() string { return EngineGosseract }

// Recognize runs one client per image; gosseract clients are not safe for
// concurrent use.
func (e *GosseractEngine) Recognize(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer c.Close()
	if e.TessdataPrefix != "" {
		c.TessdataPrefix = e.TessdataPrefix
	}

	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return "", errors.Wrap(err, "set languages")
		}
	}
	if err := c.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
		return "", errors.Wrap(err, "set interword spacing")
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return "", errors.Wrap(err, "set dpi")
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return "", errors.Wrap(err, "set image")
	}

	text, err := c.Text()
	if err != nil {
		return "", errors.Wrap(err, "OCR failed")
	}
	return text, nil
}
