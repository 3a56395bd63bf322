package config

import "strings"

type ExtractorConfig struct {
	// PDFParser picks the PDF backend: "fitz" (MuPDF) or "native" (pure Go)
	PDFParser string `env:"PDF_PARSER" yaml:"pdfParser"`

	// OCRLanguages is the tesseract language list for the image fallback, e.g. "eng+kor"
	OCRLanguages string `env:"OCR_LANGUAGES" yaml:"ocrLanguages"`
}

func NewExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		PDFParser:    "fitz",
		OCRLanguages: "eng",
	}
}

func (c *ExtractorConfig) Languages() []string {
	return strings.Split(c.OCRLanguages, "+")
}
