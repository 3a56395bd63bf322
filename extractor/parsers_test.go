package extractor_test

import (
	"path/filepath"
	"testing"

	"github.com/habiliai/tutorwise/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDOCX(t *testing.T) {
	path := writeDOCX(t,
		`<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>`+
			`<w:p/>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>in a table</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>Col1</w:t><w:tab/><w:t>Col2</w:t><w:br/><w:t>next line</w:t></w:r></w:p>`,
	)

	text, err := extractor.ParseDOCX(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\n\nCol1\tCol2\nnext line", text)
}

func TestParseDOCX_NotAZip(t *testing.T) {
	path := writeFile(t, "broken.docx", []byte("plain text"))

	result, err := extractor.New().Extract(t.Context(), path)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Text, "[Extraction error: failed to open DOCX")
}

func TestParsePDF(t *testing.T) {
	path := writePDF(t, []string{"Hello", "", "World"})

	t.Run("fitz", func(t *testing.T) {
		text, err := extractor.ParseFitzPDF(t.Context(), path)
		require.NoError(t, err)
		assert.Equal(t, "Hello\nWorld", text)
	})

	t.Run("native", func(t *testing.T) {
		text, err := extractor.ParseNativePDF(t.Context(), path)
		require.NoError(t, err)
		assert.Contains(t, text, "Hello")
		assert.Contains(t, text, "World")
	})

	t.Run("selected through options", func(t *testing.T) {
		result, err := extractor.New(extractor.WithPDFParser("native")).Extract(t.Context(), path)
		require.NoError(t, err)
		assert.False(t, result.Degraded)
		assert.Contains(t, result.Text, "World")
	})
}

func TestParseMarkdown(t *testing.T) {
	path := writeFile(t, "notes.md", []byte("# Cells\n\nThe **mitochondria** is the\npowerhouse.\n\n- one\n- two\n\n```\ncode here\n```\n"))

	text, err := extractor.ParseMarkdown(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "Cells\nThe mitochondria is the powerhouse.\none\ntwo\ncode here", text)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"term", "definition"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"ATP", "energy currency"}))
	path := filepath.Join(t.TempDir(), "glossary.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	text, err := extractor.ParseXLSX(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Sheet1\nterm\tdefinition\nATP\tenergy currency", text)
}
