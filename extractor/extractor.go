package extractor

import (
	"context"
	"log/slog"

	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/mylog"
)

type (
	// Captioner describes an image with a remote vision model.
	Captioner interface {
		Caption(ctx context.Context, path string, mimeType string) (string, error)
	}

	// VideoSummarizer produces a summary followed by a quiz with an answer key.
	VideoSummarizer interface {
		Summarize(ctx context.Context, path string, mimeType string) (string, error)
	}

	// OCR reads printed text from an image file.
	OCR interface {
		Recognize(ctx context.Context, path string) (string, error)
	}

	// Parser turns a local document into plain text.
	Parser interface {
		Parse(ctx context.Context, path string) (string, error)
	}

	ParserFunc func(ctx context.Context, path string) (string, error)

	Extractor struct {
		captioner  Captioner
		summarizer VideoSummarizer
		ocr        OCR
		parsers    map[string]Parser
		logger     *slog.Logger
	}

	Option func(*Extractor)
)

func (f ParserFunc) Parse(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func WithCaptioner(c Captioner) Option {
	return func(e *Extractor) {
		e.captioner = c
	}
}

func WithVideoSummarizer(s VideoSummarizer) Option {
	return func(e *Extractor) {
		e.summarizer = s
	}
}

func WithOCR(o OCR) Option {
	return func(e *Extractor) {
		e.ocr = o
	}
}

// WithParser registers (or replaces) the local parser for ext.
func WithParser(ext string, p Parser) Option {
	return func(e *Extractor) {
		e.parsers[ext] = p
	}
}

// WithPDFParser selects the PDF backend by name: "fitz" or "native".
func WithPDFParser(name string) Option {
	return func(e *Extractor) {
		switch name {
		case "native":
			e.parsers[".pdf"] = ParserFunc(ParseNativePDF)
		default:
			e.parsers[".pdf"] = ParserFunc(ParseFitzPDF)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		parsers: map[string]Parser{
			".pdf":      ParserFunc(ParseFitzPDF),
			".docx":     ParserFunc(ParseDOCX),
			".txt":      ParserFunc(ParseText),
			".md":       ParserFunc(ParseMarkdown),
			".markdown": ParserFunc(ParseMarkdown),
			".xlsx":     ParserFunc(ParseXLSX),
		},
		logger: mylog.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text of the file at path. Remote and parser failures
// are reported as degraded results; the only returned error is an OCR
// failure after image captioning already failed.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	ext := Ext(path)
	logger := e.logger.With("path", path, "ext", ext)

	var (
		result Result
		err    error
	)
	switch Classify(ext) {
	case KindVideo:
		result = e.extractVideo(ctx, path, ext)
	case KindImage:
		result, err = e.extractImage(ctx, path, ext, logger)
	case KindDocument:
		result = e.extractDocument(ctx, path, ext)
	default:
		result = unsupported(ext)
	}
	if err != nil {
		return Result{}, err
	}

	if result.Degraded {
		logger.Warn("degraded extraction", "err", result.Cause)
	} else {
		logger.Debug("extracted text", "chars", len(result.Text))
	}

	return result, nil
}

func (e *Extractor) extractVideo(ctx context.Context, path, ext string) Result {
	if e.summarizer == nil {
		return videoError(errors.New("video summarizer is not configured"))
	}

	summary, err := e.summarizer.Summarize(ctx, path, MimeType(ext))
	if err != nil {
		return videoError(err)
	}
	return Ok(summary)
}

func (e *Extractor) extractImage(ctx context.Context, path, ext string, logger *slog.Logger) (Result, error) {
	if e.captioner != nil {
		caption, err := e.captioner.Caption(ctx, path, MimeType(ext))
		if err == nil {
			return Ok(caption), nil
		}
		logger.Warn("caption failed, falling back to OCR", "err", err)
	}

	if e.ocr == nil {
		return Result{}, errors.Wrapf(errors.ErrInvalidConfig, "no OCR engine configured for %s", path)
	}

	text, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to recognize text in %s", path)
	}
	return Ok(text), nil
}

func (e *Extractor) extractDocument(ctx context.Context, path, ext string) Result {
	parser, ok := e.parsers[ext]
	if !ok {
		return unsupported(ext)
	}

	text, err := parser.Parse(ctx, path)
	if err != nil {
		return extractionError(err)
	}
	return Ok(Sanitize(text))
}
