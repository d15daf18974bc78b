// Package docfixture writes small PDF and DOCX files for tests.
package docfixture

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/afero"
)

// PDF renders one page per entry; each line of an entry becomes one text cell.
func PDF(t testing.TB, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	for _, page := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		for _, line := range strings.Split(page, "\n") {
			doc.CellFormat(0, 10, line, "", 1, "L", false, 0, "")
		}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

// DOCX builds a minimal Word document with one body paragraph per entry.
func DOCX(t testing.TB, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
		if err := xml.EscapeText(&body, []byte(p)); err != nil {
			t.Fatalf("escape paragraph: %v", err)
		}
		body.WriteString("</w:t></w:r></w:p>")
	}
	return DOCXFromBody(t, body.String())
}

// DOCXFromBody wraps raw WordprocessingML body content into a .docx archive.
func DOCXFromBody(t testing.TB, bodyXML string) []byte {
	t.Helper()
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + bodyXML + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   documentXML,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// Write stores raw bytes at path in fsys.
func Write(t testing.TB, fsys afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
