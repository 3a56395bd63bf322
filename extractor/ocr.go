//go:build !without_ocr

package extractor

import (
	"context"
	"strings"

	"github.com/habiliai/tutorwise/errors"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs OCR through libtesseract. A client is created per call since
// gosseract clients are not safe for concurrent use.
type Tesseract struct {
	Languages []string
}

var _ OCR = (*Tesseract)(nil)

func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", errors.Wrapf(err, "failed to set OCR languages")
		}
	}
	if err := client.SetImage(path); err != nil {
		return "", errors.Wrapf(err, "failed to load image")
	}

	text, err := client.Text()
	if err != nil {
		return "", errors.Wrapf(err, "failed to run OCR")
	}
	return strings.TrimSpace(text), nil
}
