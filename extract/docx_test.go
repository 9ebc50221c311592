package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDOCX assembles a minimal DOCX archive in memory.
func buildDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	if documentXML != "" {
		f, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = f.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	if coreXML != "" {
		f, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = f.Write([]byte(coreXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docBody = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`

const docCore = `<?xml version="1.0"?>
<coreProperties><title>Annual Report</title></coreProperties>`

func TestDOCXExtractor_Paragraphs(t *testing.T) {
	e := &DOCXExtractor{}
	data := buildDOCX(t, docBody, "")

	result, err := e.Extract(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", result.Text)
}

func TestDOCXExtractor_Title(t *testing.T) {
	e := &DOCXExtractor{}
	data := buildDOCX(t, docBody, docCore)

	result, err := e.Extract(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Annual Report", result.Title)
}

func TestDOCXExtractor_NotAZip(t *testing.T) {
	e := &DOCXExtractor{}

	_, err := e.Extract(context.Background(), []byte("plain text, not a zip"), Options{})
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestDOCXExtractor_MissingDocumentXML(t *testing.T) {
	e := &DOCXExtractor{}
	data := buildDOCX(t, "", docCore)

	_, err := e.Extract(context.Background(), data, Options{})
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestPDFExtractor_Corrupt(t *testing.T) {
	e := &PDFExtractor{}

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 truncated garbage"), Options{})
	assert.ErrorIs(t, err, ErrCorruptDocument)
}
