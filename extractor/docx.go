package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/habiliai/tutorwise/errors"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ParseDOCX returns the body paragraphs of a .docx file in document order,
// one per line. Paragraphs nested in tables are not included.
func ParseDOCX(_ context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open DOCX")
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", errors.Wrapf(err, "failed to open document.xml")
		}
		defer rc.Close()

		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", err
		}
		return strings.Join(paragraphs, "\n"), nil
	}

	return "", errors.New("invalid DOCX: missing word/document.xml")
}

func bodyParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int // element depth below w:body
		inBody     bool
		inPara     bool
		inText     bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse document.xml")
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				if inBody {
					depth++
				}
				continue
			}
			switch {
			case t.Name.Local == "body":
				inBody = true
				depth = 0
				continue
			case !inBody:
				continue
			}
			depth++
			switch t.Name.Local {
			case "p":
				if depth == 1 {
					inPara = true
					current.Reset()
				}
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if !inBody {
				continue
			}
			if t.Name.Space == wordNamespace && t.Name.Local == "body" {
				inBody = false
				continue
			}
			if t.Name.Space == wordNamespace {
				switch t.Name.Local {
				case "p":
					if depth == 1 && inPara {
						paragraphs = append(paragraphs, current.String())
						inPara = false
					}
				case "t":
					inText = false
				}
			}
			depth--
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
