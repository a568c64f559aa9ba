package pdftabular

import (
	"math"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// extractPageText loads one page and returns its native text laid out so
// that column positions survive as runs of spaces.
func extractPageText(instance pdfium.Pdfium, doc references.FPDF_DOCUMENT, index int) (string, error) {
	pageResp, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: doc,
		Index:    index,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to load page")
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	chars, err := extractChars(instance, pageResp.Page)
	if err != nil {
		return "", err
	}
	return layoutText(chars), nil
}

// extractChars extracts all characters of a page's text layer with their
// boxes in top-left origin coordinates.
func extractChars(instance pdfium.Pdfium, page references.FPDF_PAGE) ([]Char, error) {
	pageHeight, err := instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page size")
	}

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	height := float64(pageHeight.PageHeight)
	chars := make([]Char, 0, charCount.Count)
	for i := range charCount.Count {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		// PDF space has its origin bottom-left
		box := Rect{
			X0: charBox.Left,
			Y0: height - charBox.Top,
			X1: charBox.Right,
			Y1: height - charBox.Bottom,
		}

		fontSize := 12.0
		if fs, err := instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage.TextPage,
			Index:    i,
		}); err == nil {
			fontSize = fs.FontSize
		}

		chars = append(chars, Char{
			Text:     rune(unicodeRes.Unicode),
			Box:      box,
			FontSize: fontSize,
		})
	}

	return deduplicateCJKChars(chars), nil
}

// ligatureMap maps ligature unicode codepoints to their expanded forms
var ligatureMap = map[rune]string{
	0xFB00: "ff",
	0xFB01: "fi",
	0xFB02: "fl",
	0xFB03: "ffi",
	0xFB04: "ffl",
	0xFB05: "ft",
	0xFB06: "st",
}

// expandLigature returns the letters a ligature glyph stands for.
func expandLigature(r rune) string {
	if s, ok := ligatureMap[r]; ok {
		return s
	}
	return string(r)
}

// isCJK checks if a rune is in a CJK unicode block
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // Extension A
		(r >= 0x20000 && r <= 0x2CEAF) || // Extensions B to E
		(r >= 0xF900 && r <= 0xFAFF) || // Compatibility Ideographs
		(r >= 0x2F800 && r <= 0x2FA1F) // Compatibility Ideographs Supplement
}

// deduplicateCJKChars drops a CJK character drawn a second time at nearly
// the same position as the previous one, a rendering artifact of some
// producers that turns "微软" into "微微软软".
func deduplicateCJKChars(chars []Char) []Char {
	out := chars[:0]
	for _, c := range chars {
		if n := len(out); n > 0 && isCJK(c.Text) && out[n-1].Text == c.Text {
			prev := out[n-1]
			if math.Abs(c.Box.X0-prev.Box.X0) < prev.Box.Width()*0.3 &&
				math.Abs(c.Box.Y1-prev.Box.Y1) < prev.Box.Height()*0.3 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
