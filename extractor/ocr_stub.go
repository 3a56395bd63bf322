//go:build without_ocr

package extractor

import (
	"context"

	"github.com/habiliai/tutorwise/errors"
)

// Tesseract is unavailable in builds tagged without_ocr; every call fails and
// image ingestion falls through to its error path.
type Tesseract struct {
	Languages []string
}

var _ OCR = (*Tesseract)(nil)

func (t *Tesseract) Recognize(context.Context, string) (string, error) {
	return "", errors.Wrapf(errors.ErrInvalidConfig, "OCR support is not built in")
}
