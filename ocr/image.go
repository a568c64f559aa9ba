package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// MaxDimension bounds the longer side of an image handed to tesseract.
// Larger renders are scaled down.
const MaxDimension = 8000

// EncodeImage converts a rendered page to grayscale and encodes it in
// format.
func EncodeImage(img image.Image, format ImageFormat) ([]byte, error) {
	gray := toGray(img)

	var buf bytes.Buffer
	switch format {
	case FormatPNG, "":
		if err := png.Encode(&buf, gray); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	case FormatTIFF:
		if err := tiff.Encode(&buf, gray, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, errors.Wrap(err, "encode tiff")
		}
	default:
		return nil, errors.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}

func toGray(img image.Image) *image.Gray {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if longest := max(w, h); longest > MaxDimension {
		w = w * MaxDimension / longest
		h = h * MaxDimension / longest
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(gray, gray.Bounds(), img, src.Min, draw.Src)
		return gray
	}
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, src, draw.Src, nil)
	return gray
}
