package extractor

import (
	"context"
	"os"
	"strings"

	"github.com/habiliai/tutorwise/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseText reads a UTF-8 file, dropping invalid byte sequences.
func ParseText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read file")
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// ParseMarkdown returns the text content of a markdown file with one line
// per block and the markup stripped.
func ParseMarkdown(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read file")
	}
	source := []byte(strings.ToValidUTF8(string(data), ""))

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var (
		lines   []string
		current strings.Builder
	)
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	if err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					current.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				current.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				flush()
				segments := node.Lines()
				for i := 0; i < segments.Len(); i++ {
					seg := segments.At(i)
					current.Write(seg.Value(source))
				}
				flush()
				return ast.WalkSkipChildren, nil
			}
		default:
			if n.Type() == ast.TypeBlock && !entering {
				flush()
			}
		}
		return ast.WalkContinue, nil
	}); err != nil {
		return "", errors.Wrapf(err, "failed to walk markdown")
	}
	flush()

	return strings.Join(lines, "\n"), nil
}
