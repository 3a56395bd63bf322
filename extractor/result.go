package extractor

import (
	"fmt"

	"github.com/habiliai/tutorwise/errors"
)

// Result is the outcome of extracting one file. A degraded result carries a
// human readable placeholder in Text and the failure that produced it in
// Cause, so callers can index the placeholder while still seeing the error.
type Result struct {
	Text     string
	Degraded bool
	Cause    error
}

func Ok(text string) Result {
	return Result{Text: text}
}

func Degraded(placeholder string, cause error) Result {
	return Result{Text: placeholder, Degraded: true, Cause: cause}
}

func videoError(cause error) Result {
	return Degraded(fmt.Sprintf("[Video summarization error: %v]", cause), cause)
}

func extractionError(cause error) Result {
	return Degraded(fmt.Sprintf("[Extraction error: %v]", cause), cause)
}

func unsupported(ext string) Result {
	return Degraded(fmt.Sprintf("[Unsupported file type: %s]", ext), errors.Wrapf(errors.ErrInvalidParams, "unsupported file type %q", ext))
}
