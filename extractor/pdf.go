package extractor

import (
	"context"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/habiliai/tutorwise/errors"
	"github.com/ledongthuc/pdf"
)

// ParseFitzPDF extracts page text with MuPDF.
func ParseFitzPDF(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open PDF")
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			return "", errors.Wrapf(err, "failed to extract text from page %d", pageNum+1)
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

// ParseNativePDF extracts page text without cgo.
func ParseNativePDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open PDF")
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.Wrapf(err, "failed to extract text from page %d", pageNum)
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

func joinPages(pages []string) string {
	nonEmpty := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
